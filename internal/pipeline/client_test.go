package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// pipelineServer fakes the three JSON endpoints plus the presigned PUT target,
// counting calls so tests can assert which stages ran.
type pipelineServer struct {
	t *testing.T

	mu            sync.Mutex
	presignCalls  int
	uploadCalls   int
	registerCalls int
	captionCalls  int

	uploadStatus int // 0 means 200
	server       *httptest.Server
}

func newPipelineServer(t *testing.T) *pipelineServer {
	ps := &pipelineServer{t: t}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/pipeline/generate-presigned-url", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.presignCalls++
		ps.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{
			"presignedUrl": ps.server.URL + "/upload-target",
			"cdnUrl":       "https://cdn.example.com/x.png",
		})
	})

	mux.HandleFunc("/upload-target", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.uploadCalls++
		status := ps.uploadStatus
		ps.mu.Unlock()
		if r.Method != http.MethodPut {
			ps.t.Errorf("upload method = %s, want PUT", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "image/png" {
			ps.t.Errorf("upload content type = %q, want image/png", got)
		}
		if r.Header.Get("Authorization") != "" {
			ps.t.Error("presigned PUT carried an Authorization header")
		}
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	})

	mux.HandleFunc("/api/pipeline/upload-image-from-url", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.registerCalls++
		ps.mu.Unlock()
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["imageUrl"] != "https://cdn.example.com/x.png" {
			ps.t.Errorf("register imageUrl = %v, want cdn url", body["imageUrl"])
		}
		if body["isCommonUse"] != false {
			ps.t.Errorf("register isCommonUse = %v, want false", body["isCommonUse"])
		}
		json.NewEncoder(w).Encode(map[string]string{"imageId": "img_1"})
	})

	mux.HandleFunc("/api/pipeline/generate-captions", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.captionCalls++
		ps.mu.Unlock()
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["imageId"] != "img_1" {
			ps.t.Errorf("captions imageId = %v, want img_1", body["imageId"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"captions": []string{"A cat."}})
	})

	ps.server = httptest.NewServer(mux)
	t.Cleanup(ps.server.Close)
	return ps
}

func TestClientRunSuccess(t *testing.T) {
	ps := newPipelineServer(t)

	var messages []string
	client := New(&Config{
		BaseURL: ps.server.URL,
		Token:   "test-token",
		OnProgress: func(step, total int, message string) {
			messages = append(messages, message)
		},
	})

	result, err := client.Run(context.Background(), []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.ImageID != "img_1" {
		t.Errorf("image id = %q, want img_1", result.ImageID)
	}
	if result.CDNURL != "https://cdn.example.com/x.png" {
		t.Errorf("cdn url = %q", result.CDNURL)
	}
	if !reflect.DeepEqual(result.Captions, []string{"A cat."}) {
		t.Errorf("captions = %v, want [A cat.]", result.Captions)
	}

	if ps.presignCalls != 1 || ps.uploadCalls != 1 || ps.registerCalls != 1 || ps.captionCalls != 1 {
		t.Errorf("call counts = %d/%d/%d/%d, want 1/1/1/1",
			ps.presignCalls, ps.uploadCalls, ps.registerCalls, ps.captionCalls)
	}

	want := []string{
		"Step 1/4: Generating presigned upload URL...",
		"Step 2/4: Uploading image bytes to presigned URL...",
		"Step 3/4: Registering uploaded image in pipeline...",
		"Step 4/4: Generating captions...",
	}
	if !reflect.DeepEqual(messages, want) {
		t.Errorf("progress messages = %v, want %v", messages, want)
	}
}

func TestClientRunUploadFailureAbortsRemainingStages(t *testing.T) {
	ps := newPipelineServer(t)
	ps.uploadStatus = http.StatusInternalServerError

	client := New(&Config{BaseURL: ps.server.URL})

	_, err := client.Run(context.Background(), []byte("png-bytes"), "image/png")
	if err == nil {
		t.Fatal("Run() succeeded, want upload error")
	}

	var statusErr *UploadStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want UploadStatusError", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", statusErr.Status)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error message %q does not mention the status", err.Error())
	}

	if ps.registerCalls != 0 || ps.captionCalls != 0 {
		t.Errorf("later stages ran after upload failure: register=%d captions=%d",
			ps.registerCalls, ps.captionCalls)
	}
}

func TestClientRunUnsupportedContentTypeMakesNoCalls(t *testing.T) {
	ps := newPipelineServer(t)
	client := New(&Config{BaseURL: ps.server.URL})

	_, err := client.Run(context.Background(), []byte("data"), "application/zip")
	var unsupported *UnsupportedContentTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedContentTypeError", err)
	}

	if ps.presignCalls != 0 || ps.uploadCalls != 0 || ps.registerCalls != 0 || ps.captionCalls != 0 {
		t.Errorf("network calls made for rejected content type: %d/%d/%d/%d",
			ps.presignCalls, ps.uploadCalls, ps.registerCalls, ps.captionCalls)
	}
}

func TestClientRunBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/pipeline/generate-presigned-url", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		json.NewEncoder(w).Encode(map[string]string{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(&Config{BaseURL: server.URL})

	done := make(chan struct{})
	go func() {
		defer close(done)
		client.Run(context.Background(), []byte("x"), "image/png")
	}()
	<-started

	_, err := client.Run(context.Background(), []byte("x"), "image/png")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Run() err = %v, want ErrBusy", err)
	}

	close(release)
	<-done

	// The flag clears once the first run finishes; this run gets past it.
	_, err = client.Run(context.Background(), []byte("x"), "image/png")
	if errors.Is(err, ErrBusy) {
		t.Error("Run() after completion still reports busy")
	}
}

func TestClientRunErrorDetailPreference(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "details preferred over error",
			body: `{"error": "Pipeline request failed.", "details": "bucket missing"}`,
			want: "bucket missing",
		},
		{
			name: "error field fallback",
			body: `{"error": "Unsupported or missing image contentType."}`,
			want: "Unsupported or missing image contentType.",
		},
		{
			name: "generic status fallback",
			body: `not json`,
			want: "request failed with status 503",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/pipeline/generate-presigned-url", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(tc.body))
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			client := New(&Config{BaseURL: server.URL})
			_, err := client.Run(context.Background(), []byte("x"), "image/png")
			if err == nil {
				t.Fatal("Run() succeeded, want error")
			}
			if err.Error() != tc.want {
				t.Errorf("err = %q, want %q", err.Error(), tc.want)
			}
		})
	}
}

func TestClientRunEmptySuccessBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pipeline/generate-presigned-url", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(&Config{BaseURL: server.URL})
	_, err := client.Run(context.Background(), []byte("x"), "image/png")
	if err == nil || err.Error() != "API response was empty" {
		t.Errorf("err = %v, want empty-response error", err)
	}
}
