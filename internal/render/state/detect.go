package state

import (
	"os"
)

const (
	ActionRender = "render"
	ActionSkip   = "skip"

	ReasonForced        = "forced"
	ReasonNew           = "new output"
	ReasonConfigChanged = "config changed"
	ReasonInputChanged  = "input changed"
	ReasonOutputMissing = "output missing"
	ReasonUpToDate      = "up to date"
)

// Decision describes whether an output must be assembled again.
type Decision struct {
	Action string
	Reason string
}

// Detect compares the current hashes for outputPath against the stored state.
func Detect(rs *RenderState, outputPath, configHash, inputHash string, force bool) Decision {
	if force {
		return Decision{Action: ActionRender, Reason: ReasonForced}
	}

	prior, exists := rs.Outputs[outputPath]
	if !exists {
		return Decision{Action: ActionRender, Reason: ReasonNew}
	}
	if configHash != rs.ConfigHash {
		return Decision{Action: ActionRender, Reason: ReasonConfigChanged}
	}
	if inputHash != prior.InputHash {
		return Decision{Action: ActionRender, Reason: ReasonInputChanged}
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return Decision{Action: ActionRender, Reason: ReasonOutputMissing}
	}
	return Decision{Action: ActionSkip, Reason: ReasonUpToDate}
}
