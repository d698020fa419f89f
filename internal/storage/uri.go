package storage

import "strings"

const uriScheme = "s3://"

// FormatURI builds the stored reference for an object.
func FormatURI(bucket, key string) string {
	return uriScheme + bucket + "/" + key
}

// ParseURI splits an s3://bucket/key reference into bucket and key.
// Returns ok=false for anything that is not a well-formed storage URI,
// so callers can pass foreign references through unchanged.
func ParseURI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, uriScheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
