package pipeline

import (
	"errors"
	"testing"
)

func TestAdvanceHappyPath(t *testing.T) {
	run := Advance(NewRun(), Started{ContentType: "image/png"})
	if run.Stage != StageAwaitingPresignedURL {
		t.Fatalf("after Started: stage = %q, want %q", run.Stage, StageAwaitingPresignedURL)
	}
	if run.ContentType != "image/png" {
		t.Errorf("content type = %q, want image/png", run.ContentType)
	}

	run = Advance(run, PresignedIssued{PresignedURL: "https://s3/put", CDNURL: "https://cdn/x.png"})
	if run.Stage != StageUploading {
		t.Fatalf("after PresignedIssued: stage = %q, want %q", run.Stage, StageUploading)
	}

	run = Advance(run, Uploaded{})
	if run.Stage != StageRegisteringAsset {
		t.Fatalf("after Uploaded: stage = %q, want %q", run.Stage, StageRegisteringAsset)
	}

	run = Advance(run, AssetRegistered{ImageID: "img_1"})
	if run.Stage != StageGeneratingCaptions {
		t.Fatalf("after AssetRegistered: stage = %q, want %q", run.Stage, StageGeneratingCaptions)
	}
	if run.ImageID != "img_1" {
		t.Errorf("image id = %q, want img_1", run.ImageID)
	}

	run = Advance(run, CaptionsGenerated{Payload: map[string]interface{}{"captions": []interface{}{"a"}}})
	if run.Stage != StageDone {
		t.Fatalf("after CaptionsGenerated: stage = %q, want %q", run.Stage, StageDone)
	}
	if run.Err != nil {
		t.Errorf("completed run carries error: %v", run.Err)
	}
}

func TestAdvanceContentTypeNormalized(t *testing.T) {
	run := Advance(NewRun(), Started{ContentType: " IMAGE/JPEG "})
	if run.Stage != StageAwaitingPresignedURL {
		t.Fatalf("stage = %q, want %q", run.Stage, StageAwaitingPresignedURL)
	}
	if run.ContentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", run.ContentType)
	}
}

func TestAdvanceUnsupportedContentType(t *testing.T) {
	run := Advance(NewRun(), Started{ContentType: "application/pdf"})
	if run.Stage != StageFailed {
		t.Fatalf("stage = %q, want %q", run.Stage, StageFailed)
	}
	var unsupported *UnsupportedContentTypeError
	if !errors.As(run.Err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedContentTypeError", run.Err)
	}
	if unsupported.ContentType != "application/pdf" {
		t.Errorf("error content type = %q, want application/pdf", unsupported.ContentType)
	}
}

func TestAdvanceMalformedResponses(t *testing.T) {
	testCases := []struct {
		name        string
		run         Run
		event       Event
		wantMissing string
	}{
		{
			name:        "missing presigned url",
			run:         Run{Stage: StageAwaitingPresignedURL},
			event:       PresignedIssued{CDNURL: "https://cdn/x"},
			wantMissing: "presignedUrl or cdnUrl",
		},
		{
			name:        "missing cdn url",
			run:         Run{Stage: StageAwaitingPresignedURL},
			event:       PresignedIssued{PresignedURL: "https://s3/put"},
			wantMissing: "presignedUrl or cdnUrl",
		},
		{
			name:        "missing image id",
			run:         Run{Stage: StageRegisteringAsset},
			event:       AssetRegistered{},
			wantMissing: "imageId",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run := Advance(tc.run, tc.event)
			if run.Stage != StageFailed {
				t.Fatalf("stage = %q, want %q", run.Stage, StageFailed)
			}
			var malformed *MalformedResponseError
			if !errors.As(run.Err, &malformed) {
				t.Fatalf("err = %v, want MalformedResponseError", run.Err)
			}
			if malformed.Missing != tc.wantMissing {
				t.Errorf("missing = %q, want %q", malformed.Missing, tc.wantMissing)
			}
		})
	}
}

func TestAdvanceOutOfOrderEventFails(t *testing.T) {
	testCases := []struct {
		name  string
		run   Run
		event Event
	}{
		{"uploaded before presign", Run{Stage: StageAwaitingPresignedURL}, Uploaded{}},
		{"started twice", Run{Stage: StageUploading}, Started{ContentType: "image/png"}},
		{"captions before register", Run{Stage: StageUploading}, CaptionsGenerated{}},
		{"register from idle", NewRun(), AssetRegistered{ImageID: "img_1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run := Advance(tc.run, tc.event)
			if run.Stage != StageFailed {
				t.Fatalf("stage = %q, want %q", run.Stage, StageFailed)
			}
			var invalid *InvalidTransitionError
			if !errors.As(run.Err, &invalid) {
				t.Fatalf("err = %v, want InvalidTransitionError", run.Err)
			}
		})
	}
}

func TestAdvanceFailedFromAnyStage(t *testing.T) {
	boom := errors.New("boom")
	for _, stage := range []Stage{StageIdle, StageAwaitingPresignedURL, StageUploading, StageRegisteringAsset, StageGeneratingCaptions} {
		run := Advance(Run{Stage: stage}, Failed{Err: boom})
		if run.Stage != StageFailed {
			t.Errorf("from %q: stage = %q, want %q", stage, run.Stage, StageFailed)
		}
		if !errors.Is(run.Err, boom) {
			t.Errorf("from %q: err = %v, want boom", stage, run.Err)
		}
	}
}
