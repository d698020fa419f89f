package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-gallery/internal/recognition"
)

// stubService implements Service with canned responses and error injection.
type stubService struct {
	profile  *recognition.ProfileView
	profiles []recognition.ProfileView
	results  []recognition.DetectedFaceResult
	matches  []recognition.RecognizedFace
	faces    []recognition.FaceSummary

	err error

	// captured arguments
	createdName  string
	createdImage []byte
	profileID    string
	uploadImage  []byte
}

func (s *stubService) CreateProfile(ctx context.Context, name string, image []byte) (*recognition.ProfileView, error) {
	s.createdName = name
	s.createdImage = image
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubService) GetProfile(ctx context.Context, profileID string) (*recognition.ProfileView, error) {
	s.profileID = profileID
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubService) ListProfiles(ctx context.Context) ([]recognition.ProfileView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func (s *stubService) RematchProfile(ctx context.Context, profileID string) (*recognition.ProfileView, error) {
	s.profileID = profileID
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubService) DeleteProfile(ctx context.Context, profileID string) error {
	s.profileID = profileID
	return s.err
}

func (s *stubService) UploadGroupPhoto(ctx context.Context, image []byte) ([]recognition.DetectedFaceResult, error) {
	s.uploadImage = image
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubService) RecognizeFace(ctx context.Context, image []byte) ([]recognition.RecognizedFace, error) {
	s.uploadImage = image
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func (s *stubService) ListFaces(ctx context.Context) ([]recognition.FaceSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.faces, nil
}

// multipartRequest builds a multipart POST with an optional file part and
// extra form fields.
func multipartRequest(t *testing.T, path string, file []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if file != nil {
		part, err := writer.CreateFormFile("file", "test.jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
