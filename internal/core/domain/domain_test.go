package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesKeepInsertionOrder(t *testing.T) {
	e := NewEntities()
	e.Set("Personas", []string{"Ana"})
	e.Set("Organizaciones", nil)
	e.Set("Personas", []string{"Ana", "Luis"})

	assert.Equal(t, []string{"Personas", "Organizaciones"}, e.Categories())
	assert.Equal(t, []string{"Ana", "Luis"}, e.All())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"Personas":["Ana","Luis"],"Organizaciones":[]}`, string(data))

	var back Entities
	require.NoError(t, json.Unmarshal([]byte(`{"Países":["Perú"],"Personas":["Ana"]}`), &back))
	assert.Equal(t, []string{"Países", "Personas"}, back.Categories())
}

func TestReportJSONShape(t *testing.T) {
	r := Report{
		AnalysisResult: AnalysisResult{Headline: "h", Entities: NewEntities(), Topics: []string{"Otro"}},
		Matches:        []KeywordMatch{{Client: "Banco", Term: "bcp", Kind: MatchExactKeyword}},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"titular", "resumen", "entidades", "temas", "transcripcion", "coincidencias"} {
		assert.Contains(t, m, key)
	}
	assert.Contains(t, string(data), `"tipo":"palabra clave"`)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	wrapped := fmt.Errorf("acquire: %w", Errorf(KindRecordNotFound, "record 9 not found"))
	assert.Equal(t, KindRecordNotFound, Classify(wrapped).Kind)
	assert.False(t, IsRetryable(wrapped))

	raw := errors.New("boom")
	c := Classify(raw)
	assert.Equal(t, KindUnexpected, c.Kind)
	assert.ErrorIs(t, c, raw)

	assert.True(t, IsRetryable(NewError(KindExtractionFailed, "blocked", nil)))
	assert.Equal(t, "SourceUnavailable: private", Errorf(KindSourceUnavailable, "private").Error())
}

func TestParseSourceKind(t *testing.T) {
	k, err := ParseSourceKind(" TV ")
	require.NoError(t, err)
	assert.Equal(t, SourceBroadcastTV, k)
	assert.Equal(t, "TV", k.Label())
	assert.Equal(t, "YouTube", SourceOnlineVideo.Label())

	_, err = ParseSourceKind("podcast")
	assert.Error(t, err)
}

func TestStartRequestIdentifier(t *testing.T) {
	tests := []struct {
		name string
		req  StartRequest
		want string
	}{
		{"youtube uses url", StartRequest{Kind: "youtube", RecordID: 5, YoutubeURL: " https://youtu.be/x "}, "https://youtu.be/x"},
		{"json number", StartRequest{Kind: "tv", RecordID: float64(1234)}, "1234"},
		{"string id", StartRequest{Kind: "radio", RecordID: " 77 "}, "77"},
		{"fractional number is not truncated", StartRequest{Kind: "tv", RecordID: 1.5}, "1.5"},
		{"huge number keeps its digits", StartRequest{Kind: "tv", RecordID: 1e20}, "100000000000000000000"},
		{"missing id", StartRequest{Kind: "radio"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Identifier())
		})
	}
}

func TestEventNames(t *testing.T) {
	assert.Equal(t, "progress", EventProgress)
	assert.Equal(t, "audio_ready", EventAudioReady)
	assert.Equal(t, "processing_done", EventProcessingDone)
	assert.Equal(t, "processing_error", EventProcessingError)
}

func TestStageTerminal(t *testing.T) {
	assert.True(t, StageCompleted.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageMatching.Terminal())
}
