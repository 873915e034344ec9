package config

import "errors"

// PipelineMode represents the read/write pipelining setting.
type PipelineMode int

// Pipeline mode constants.
const (
	PipelineAuto PipelineMode = iota
	PipelineOn
	PipelineOff
)

// ErrInvalidPipelineMode is returned when parsing an invalid mode string.
var ErrInvalidPipelineMode = errors.New("invalid pipeline mode")

// ParsePipelineMode converts a string to a PipelineMode value. The empty
// string means auto.
func ParsePipelineMode(s string) (PipelineMode, error) {
	switch s {
	case "", "auto":
		return PipelineAuto, nil
	case "on":
		return PipelineOn, nil
	case "off":
		return PipelineOff, nil
	default:
		return PipelineAuto, ErrInvalidPipelineMode
	}
}

// Resolve decides whether to pipeline. In auto mode pipelining is enabled
// exactly when the destination is a seekable file: overlapping reads with
// writes pays off there, while stdout consumers set their own pace.
func (m PipelineMode) Resolve(outputIsFile bool) bool {
	switch m {
	case PipelineOn:
		return true
	case PipelineOff:
		return false
	case PipelineAuto:
		return outputIsFile
	default:
		return outputIsFile
	}
}
