package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/SceneForge/internal/apperr"
)

const samplePlan = `{
  "project": {"id": "proj-1", "title": "Lighthouse"},
  "characters": [
    {"id": "keeper", "name": "Mara", "role": "protagonist", "voice": {"ttsVoice": "nova"}},
    {"id": "narrator", "name": "Narrator", "role": "narrator", "voice": {"ttsVoice": "onyx"}}
  ],
  "scenario": {"outline": "A keeper waits for a ship.", "acts": [{"number": 1, "title": "Storm"}]},
  "scenes": [
    {
      "id": "s1", "title": "Night watch", "act": 1, "order": 1, "duration": 8,
      "narration": "The lamp turns.",
      "dialogues": [{"characterId": "keeper", "line": "Any sign?", "audioUrl": "https://old/a.mp3"}],
      "imagePrompt": {"prompt": "lighthouse at night"},
      "videoPrompt": {"prompt": "slow pan"},
      "imageUrl": "https://old/img.png",
      "videoUrl": "https://old/v.mp4",
      "narrationAudioUrl": "https://old/n.mp3"
    },
    {
      "title": "Dawn", "act": 1, "duration": 5,
      "dialogues": [],
      "imagePrompt": {"prompt": "sunrise"},
      "videoPrompt": {"prompt": "static"}
    }
  ]
}`

func TestParse_AssignsOrderAndBackfills(t *testing.T) {
	p, err := Parse(samplePlan)
	require.NoError(t, err)
	require.Len(t, p.Scenes, 2)

	assert.Equal(t, 1, p.Scenes[0].Order)
	assert.Equal(t, 2, p.Scenes[1].Order, "missing order takes its 1-based position")
	assert.Equal(t, "scene-2", p.Scenes[1].ID)
	assert.Equal(t, "Mara", p.Scenes[0].Dialogues[0].CharacterName)
	assert.Equal(t, "proj-1", p.Project.ID)
}

func TestParse_ExplicitZeroOrderPreserved(t *testing.T) {
	p, err := Parse(`{"project":{"title":"x"},"scenes":[{"id":"a","order":0},{"id":"b"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Scenes[0].Order)
	assert.Equal(t, 2, p.Scenes[1].Order)
	assert.NotEmpty(t, p.Project.ID)
}

func TestParse_SceneIDsAreUnique(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			"BackfillSkipsExplicitID",
			`{"scenes":[{"id":"scene-2"},{}]}`,
			[]string{"scene-2", "scene-2-1"},
		},
		{
			"BackfillSkipsLaterExplicitID",
			`{"scenes":[{},{"id":"scene-1"}]}`,
			[]string{"scene-1-1", "scene-1"},
		},
		{
			"DuplicateExplicitIDs",
			`{"scenes":[{"id":"intro"},{"id":"intro"},{"id":"intro"}]}`,
			[]string{"intro", "intro-1", "intro-2"},
		},
		{
			"SuffixSkipsTakenID",
			`{"scenes":[{"id":"a"},{"id":"a"},{"id":"a-1"}]}`,
			[]string{"a", "a-2", "a-1"},
		},
		{
			"SharedExplicitOrder",
			`{"scenes":[{"order":1},{"order":1}]}`,
			[]string{"scene-1", "scene-1-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.raw)
			require.NoError(t, err)

			ids := make([]string, 0, len(p.Scenes))
			for _, scene := range p.Scenes {
				ids = append(ids, scene.ID)
			}
			assert.Equal(t, tt.want, ids)

			for _, id := range tt.want {
				scene, ok := p.SceneByID(id)
				require.True(t, ok, id)
				assert.Equal(t, id, scene.ID)
			}
		})
	}
}

func TestParse_ClearsAssets(t *testing.T) {
	p, err := Parse(samplePlan)
	require.NoError(t, err)

	for _, scene := range p.Scenes {
		assert.Empty(t, scene.ImageURL)
		assert.Empty(t, scene.VideoURL)
		assert.Empty(t, scene.NarrationAudioURL)
		for _, d := range scene.Dialogues {
			assert.Empty(t, d.AudioURL)
		}
	}
}

func TestParse_StripsFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Plain", samplePlan},
		{"JSONFence", "```json\n" + samplePlan + "\n```"},
		{"BareFence", "```\n" + samplePlan + "\n```"},
		{"Padded", "\n\n  ```json\n" + samplePlan + "\n```  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "Lighthouse", p.Project.Title)
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	first, err := Parse(samplePlan)
	require.NoError(t, err)

	text, err := Marshal(first)
	require.NoError(t, err)

	second, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_Failure(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", "```json\n{\"scenes\": [\n```"} {
		p, err := Parse(raw)
		assert.Nil(t, p)
		require.Error(t, err)
		assert.Equal(t, ParseFailedMessage, err.Error())
		assert.True(t, apperr.IsKind(err, apperr.KindParse))
	}
}
