package models

// View represents a specific UI view in the application
type View string

// Available views in the application
const (
	ViewPlayer        View = "player"
	ViewLoading       View = "loading"
	ViewHelp          View = "help"
	ViewQualitySelect View = "quality_select"
	ViewSeekPrompt    View = "seek_prompt"
)
