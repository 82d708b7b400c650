package provider

// ImageProviderID is the closed set of image provider tags
type ImageProviderID string

const (
	ImageOpenAI    ImageProviderID = "openai"
	ImageReplicate ImageProviderID = "replicate"
	ImageFal       ImageProviderID = "fal"
)

// AllImageProviders enumerates every image provider tag
func AllImageProviders() []ImageProviderID {
	return []ImageProviderID{ImageOpenAI, ImageReplicate, ImageFal}
}

// VideoProviderID is the closed set of video provider tags
type VideoProviderID string

const (
	VideoFal VideoProviderID = "fal"
)

// AllVideoProviders enumerates every video provider tag
func AllVideoProviders() []VideoProviderID {
	return []VideoProviderID{VideoFal}
}

// VoiceProviderID is the closed set of voice provider tags
type VoiceProviderID string

const (
	VoiceOpenAI     VoiceProviderID = "openai"
	VoiceElevenLabs VoiceProviderID = "elevenlabs"
)

// AllVoiceProviders enumerates every voice provider tag
func AllVoiceProviders() []VoiceProviderID {
	return []VoiceProviderID{VoiceOpenAI, VoiceElevenLabs}
}

// TextProviderID is the closed set of text provider tags
type TextProviderID string

const (
	TextOpenAI TextProviderID = "openai"
	TextGemini TextProviderID = "gemini"
)

// AllTextProviders enumerates every text provider tag
func AllTextProviders() []TextProviderID {
	return []TextProviderID{TextOpenAI, TextGemini}
}
