package pipeline

// Stage names one of the states a caption-generation run passes through.
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageAwaitingPresignedURL Stage = "awaiting_presigned_url"
	StageUploading            Stage = "uploading"
	StageRegisteringAsset     Stage = "registering_asset"
	StageGeneratingCaptions   Stage = "generating_captions"
	StageDone                 Stage = "done"
	StageFailed               Stage = "failed"
)

// Run is the state value for one pipeline invocation. It is advanced only by
// Advance; the client never mutates it directly.
type Run struct {
	Stage        Stage
	ContentType  string
	PresignedURL string
	CDNURL       string
	ImageID      string
	Payload      interface{}
	Err          error
}

// NewRun returns an idle run.
func NewRun() Run {
	return Run{Stage: StageIdle}
}

// Event moves a run from one stage to the next.
type Event interface {
	isEvent()
}

// Started carries the declared content type of the file to upload.
type Started struct{ ContentType string }

// PresignedIssued carries the upload target and the public retrieval URL.
type PresignedIssued struct{ PresignedURL, CDNURL string }

// Uploaded marks the raw byte transfer as complete.
type Uploaded struct{}

// AssetRegistered carries the opaque image identifier assigned upstream.
type AssetRegistered struct{ ImageID string }

// CaptionsGenerated carries the verbatim caption payload.
type CaptionsGenerated struct{ Payload interface{} }

// Failed aborts the run from any stage.
type Failed struct{ Err error }

func (Started) isEvent()           {}
func (PresignedIssued) isEvent()   {}
func (Uploaded) isEvent()          {}
func (AssetRegistered) isEvent()   {}
func (CaptionsGenerated) isEvent() {}
func (Failed) isEvent()            {}

// Advance applies ev to run and returns the next state. Failed is accepted
// from any stage; every other event is only legal from the stage that awaits
// it, and an out-of-order event fails the run instead of corrupting it.
func Advance(run Run, ev Event) Run {
	if f, ok := ev.(Failed); ok {
		run.Stage = StageFailed
		run.Err = f.Err
		return run
	}

	switch e := ev.(type) {
	case Started:
		if run.Stage != StageIdle {
			return failInvalid(run, ev)
		}
		if !SupportedContentType(e.ContentType) {
			run.Stage = StageFailed
			run.Err = &UnsupportedContentTypeError{ContentType: e.ContentType}
			return run
		}
		run.Stage = StageAwaitingPresignedURL
		run.ContentType = normalizeContentType(e.ContentType)
	case PresignedIssued:
		if run.Stage != StageAwaitingPresignedURL {
			return failInvalid(run, ev)
		}
		if e.PresignedURL == "" || e.CDNURL == "" {
			run.Stage = StageFailed
			run.Err = &MalformedResponseError{Missing: "presignedUrl or cdnUrl"}
			return run
		}
		run.Stage = StageUploading
		run.PresignedURL = e.PresignedURL
		run.CDNURL = e.CDNURL
	case Uploaded:
		if run.Stage != StageUploading {
			return failInvalid(run, ev)
		}
		run.Stage = StageRegisteringAsset
	case AssetRegistered:
		if run.Stage != StageRegisteringAsset {
			return failInvalid(run, ev)
		}
		if e.ImageID == "" {
			run.Stage = StageFailed
			run.Err = &MalformedResponseError{Missing: "imageId"}
			return run
		}
		run.Stage = StageGeneratingCaptions
		run.ImageID = e.ImageID
	case CaptionsGenerated:
		if run.Stage != StageGeneratingCaptions {
			return failInvalid(run, ev)
		}
		run.Stage = StageDone
		run.Payload = e.Payload
	}

	return run
}

func failInvalid(run Run, ev Event) Run {
	run.Err = &InvalidTransitionError{From: run.Stage, Event: ev}
	run.Stage = StageFailed
	return run
}
