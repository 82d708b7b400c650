package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unalkalkan/SceneForge/internal/provider"
)

// CredentialHeader carries a caller-supplied provider key on GET requests
const CredentialHeader = "X-Provider-Key"

const voiceListTimeout = 30 * time.Second

// VoiceResponse represents a voice in the API response
type VoiceResponse struct {
	provider.Voice
	Provider string `json:"provider"`
}

// ListVoices handles GET /api/v1/voices. With ?provider= only that provider
// is asked and its errors are returned; otherwise failing providers are
// skipped.
func (s *Server) ListVoices(c *gin.Context) {
	providerName := c.Query("provider")
	credential := c.GetHeader(CredentialHeader)

	ctx, cancel := context.WithTimeout(c.Request.Context(), voiceListTimeout)
	defer cancel()

	allVoices := []VoiceResponse{}

	if providerName != "" {
		voiceProvider, err := s.providers.GetVoice(providerName)
		if err != nil {
			respondError(c, err)
			return
		}
		voices, err := voiceProvider.ListVoices(ctx, credential)
		if err != nil {
			respondError(c, err)
			return
		}
		allVoices = appendVoices(allVoices, providerName, voices)
	} else {
		names := s.providers.ListVoice()
		if len(names) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no voice providers configured"})
			return
		}
		for _, name := range names {
			voiceProvider, err := s.providers.GetVoice(name)
			if err != nil {
				continue
			}
			// Keys are per provider, so a shared header only makes sense for one
			voices, err := voiceProvider.ListVoices(ctx, "")
			if err != nil {
				log.Printf("[api] Failed to get voices from provider %s: %v", name, err)
				continue
			}
			allVoices = appendVoices(allVoices, name, voices)
		}
	}

	c.JSON(http.StatusOK, gin.H{"voices": allVoices, "count": len(allVoices)})
}

func appendVoices(out []VoiceResponse, providerName string, voices []provider.Voice) []VoiceResponse {
	for _, v := range voices {
		out = append(out, VoiceResponse{Voice: v, Provider: providerName})
	}
	return out
}
