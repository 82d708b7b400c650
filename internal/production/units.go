package production

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/unalkalkan/SceneForge/internal/apperr"
	"github.com/unalkalkan/SceneForge/internal/provider"
	"github.com/unalkalkan/SceneForge/internal/status"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const defaultAspectRatio = "16:9"

// GenerateSceneImage generates the still image for sceneID and writes its URL
// into the plan
func (o *Orchestrator) GenerateSceneImage(ctx context.Context, p *types.ContentPlan, sceneID string, sel ImageSelection, creds Credentials, rec status.Recorder) (string, error) {
	scene, err := findScene(p, sceneID)
	if err != nil {
		return "", err
	}
	key := status.ImageKey(sceneID)

	return o.runUnit(p, key, rec, func() (string, error) {
		imageProvider, err := o.providers.GetImage(sel.Provider)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(scene.ImagePrompt.Prompt) == "" {
			return "", apperr.Validation(fmt.Sprintf("scene %s has no image prompt", sceneID))
		}

		aspect := scene.ImagePrompt.AspectRatio
		if aspect == "" {
			aspect = defaultAspectRatio
		}
		result, err := imageProvider.Generate(ctx, provider.ImageRequest{
			Credential:        creds.For(sel.Provider),
			Model:             sel.Model,
			Prompt:            imagePromptText(scene.ImagePrompt),
			NegativePrompt:    scene.ImagePrompt.NegativePrompt,
			AspectRatio:       aspect,
			ReferenceImageURL: sel.ReferenceImageURL,
		})
		if err != nil {
			return "", err
		}
		if result.URL != "" {
			return result.URL, nil
		}
		return o.publish(ctx, result.Data, result.ContentType)
	})
}

// GenerateSceneVideo generates a clip starting from the scene's image and
// writes its URL into the plan
func (o *Orchestrator) GenerateSceneVideo(ctx context.Context, p *types.ContentPlan, sceneID string, sel VideoSelection, creds Credentials, rec status.Recorder) (string, error) {
	scene, err := findScene(p, sceneID)
	if err != nil {
		return "", err
	}
	key := status.VideoKey(sceneID)

	return o.runUnit(p, key, rec, func() (string, error) {
		if scene.ImageURL == "" {
			return "", apperr.Validation(fmt.Sprintf("scene %s needs an image before a video can be generated", sceneID))
		}
		videoProvider, err := o.providers.GetVideo(sel.Provider)
		if err != nil {
			return "", err
		}

		duration := sel.Duration
		if duration == 0 {
			duration = scene.VideoPrompt.Duration
		}
		if duration == 0 {
			duration = scene.DurationSeconds
		}
		return videoProvider.Generate(ctx, provider.VideoRequest{
			Credential: creds.For(sel.Provider),
			Model:      sel.Model,
			Prompt:     videoPromptText(scene.VideoPrompt),
			ImageURL:   scene.ImageURL,
			Duration:   duration,
		})
	})
}

// GenerateNarration voices the scene narration with the narrator's cast voice
func (o *Orchestrator) GenerateNarration(ctx context.Context, p *types.ContentPlan, sceneID string, sel VoiceSelection, creds Credentials, rec status.Recorder) (string, error) {
	scene, err := findScene(p, sceneID)
	if err != nil {
		return "", err
	}
	key := status.NarrationKey(sceneID)

	return o.runUnit(p, key, rec, func() (string, error) {
		if strings.TrimSpace(scene.Narration) == "" {
			return "", apperr.Validation(fmt.Sprintf("scene %s has no narration", sceneID))
		}
		var casting *types.VoiceCasting
		if narrator, ok := p.Narrator(); ok {
			casting = &narrator.Voice
		}
		return o.speak(ctx, scene.Narration, casting, sel, creds)
	})
}

// GenerateDialogueAudio voices one dialogue line with its character's voice
func (o *Orchestrator) GenerateDialogueAudio(ctx context.Context, p *types.ContentPlan, sceneID string, index int, sel VoiceSelection, creds Credentials, rec status.Recorder) (string, error) {
	scene, err := findScene(p, sceneID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(scene.Dialogues) {
		return "", apperr.Validation(fmt.Sprintf("scene %s has no dialogue line %d", sceneID, index))
	}
	key := status.DialogueKey(sceneID, index)

	return o.runUnit(p, key, rec, func() (string, error) {
		line := scene.Dialogues[index]
		if strings.TrimSpace(line.Line) == "" {
			return "", apperr.Validation(fmt.Sprintf("dialogue line %d of scene %s is empty", index, sceneID))
		}
		var casting *types.VoiceCasting
		if character, ok := p.CharacterByID(line.CharacterID); ok {
			casting = &character.Voice
		}
		return o.speak(ctx, line.Line, casting, sel, creds)
	})
}

// runUnit drives one unit through its status lifecycle. The URL is written
// into the plan before the unit is marked completed.
func (o *Orchestrator) runUnit(p *types.ContentPlan, key status.UnitKey, rec status.Recorder, generate func() (string, error)) (string, error) {
	rec = recorderOrDiscard(rec)
	rec.Start(key)
	log.Printf("[production] %s started", key)

	url, err := generate()
	if err == nil {
		err = Apply(p, key, url)
	}
	if err != nil {
		msg := apperr.Message(err)
		log.Printf("[production] %s failed: %v", key, err)
		rec.Fail(key, msg)
		return "", err
	}

	rec.Complete(key)
	log.Printf("[production] %s completed: %s", key, url)
	return url, nil
}

func (o *Orchestrator) speak(ctx context.Context, text string, casting *types.VoiceCasting, sel VoiceSelection, creds Credentials) (string, error) {
	voiceProvider, err := o.providers.GetVoice(sel.Provider)
	if err != nil {
		return "", err
	}

	resp, err := voiceProvider.Synthesize(ctx, provider.SpeechRequest{
		Credential: creds.For(sel.Provider),
		Text:       text,
		Voice:      voiceFor(sel, casting),
		Speed:      sel.Speed,
	})
	if err != nil {
		return "", err
	}
	return o.publish(ctx, resp.Audio, resp.ContentType)
}

func (o *Orchestrator) publish(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", apperr.Validation("provider returned no data to publish")
	}
	if o.publisher == nil {
		return "", fmt.Errorf("no asset publisher configured")
	}
	url, err := o.publisher.Publish(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to publish asset: %w", err)
	}
	return url, nil
}

// voiceFor picks the voice for sel's provider. ElevenLabs takes the external
// voice id, the symbolic providers take the TTS voice name.
func voiceFor(sel VoiceSelection, casting *types.VoiceCasting) string {
	if sel.Voice != "" {
		return sel.Voice
	}
	if casting == nil {
		return ""
	}
	if provider.VoiceProviderID(sel.Provider) == provider.VoiceElevenLabs {
		return casting.ExternalVoiceID
	}
	return casting.TTSVoice
}

func imagePromptText(set types.ImagePromptSet) string {
	text := strings.TrimSpace(set.Prompt)
	if style := strings.TrimSpace(set.Style); style != "" {
		text += ". Style: " + style
	}
	return text
}

func videoPromptText(set types.VideoPromptSet) string {
	parts := []string{strings.TrimSpace(set.Prompt)}
	if camera := strings.TrimSpace(set.Camera); camera != "" {
		parts = append(parts, "Camera: "+camera)
	}
	if motion := strings.TrimSpace(set.Motion); motion != "" {
		parts = append(parts, "Motion: "+motion)
	}
	return strings.Join(parts, ". ")
}

// Apply writes a generated asset URL into the plan unit named by key
func Apply(p *types.ContentPlan, key status.UnitKey, url string) error {
	scene, err := findScene(p, key.SceneID)
	if err != nil {
		return err
	}
	switch key.Kind {
	case status.KindImage:
		scene.ImageURL = url
	case status.KindVideo:
		scene.VideoURL = url
	case status.KindNarration:
		scene.NarrationAudioURL = url
	case status.KindDialogue:
		if key.Index < 0 || key.Index >= len(scene.Dialogues) {
			return apperr.Validation(fmt.Sprintf("scene %s has no dialogue line %d", key.SceneID, key.Index))
		}
		scene.Dialogues[key.Index].AudioURL = url
	default:
		return fmt.Errorf("unknown unit kind: %s", key.Kind)
	}
	return nil
}
