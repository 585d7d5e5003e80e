package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/ports"
)

func setupRepo(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	repo, err := loam.Init(dir, loam.WithVersioning(false))
	require.NoError(t, err)
	return New(loam.NewTypedRepository[Document](repo))
}

const motorJSON = `{
  "lineOfBusiness": "motor",
  "meta": {"version": 3, "previewMode": "page"},
  "pages": [{
    "id": "driver", "template": "form",
    "groups": [{"id": "g1", "questions": [
      {"id": "age", "type": "number", "required": true},
      {"id": "young", "type": "yesno",
       "logic": {"enabled": true, "rules": [{"questionId": "age", "operator": "lt", "value": 25}]}}
    ]}]
  }]
}`

const homeMarkdown = `---
lineOfBusiness: home
pages:
  - id: property
    template: form
    groups:
      - id: g1
        questions:
          - id: bedrooms
            type: number
---
Home insurance journey.
`

func TestLoader_Contract(t *testing.T) {
	loader := setupRepo(t, map[string]string{
		"motor.json": motorJSON,
		"home.md":    homeMarkdown,
	})
	ports.RunJourneyLoaderContract(t, loader, []string{"home", "motor"})
}

func TestLoader_DecodesDocuments(t *testing.T) {
	loader := setupRepo(t, map[string]string{"motor.json": motorJSON})

	j, err := loader.GetJourney(context.Background(), "motor")
	require.NoError(t, err)

	assert.Equal(t, 3, j.Meta.Version)
	assert.Equal(t, domain.ModePage, j.Meta.PreviewMode)
	q := j.Pages[0].Groups[0].Questions
	assert.True(t, q[0].Required)
	assert.Equal(t, domain.OpLess, q[1].Logic.Rules[0].Operator)
	assert.Equal(t, []domain.FlowItem{{Type: domain.FlowGroup, ID: "g1"}}, j.Pages[0].Flow)
}

func TestLoader_ListDetectsCollisions(t *testing.T) {
	loader := setupRepo(t, map[string]string{
		"motor.json": motorJSON,
		"motor.md":   homeMarkdown,
	})

	_, err := loader.ListJourneys(context.Background())
	assert.ErrorContains(t, err, "collision")
}

func TestTrimExtension(t *testing.T) {
	assert.Equal(t, "motor", trimExtension("motor.json"))
	assert.Equal(t, "lines/pet", trimExtension("lines/pet.yaml"))
	assert.Equal(t, "plain", trimExtension("plain"))
}
