package journey_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/journey"
)

const validDocument = `
name: Airtime Topup
description: Buy airtime for yourself or a friend
steps:
  - id: root
    type: menu
    options:
      - text: For myself
        next: amount
      - text: For a friend
        next: msisdn
  - id: msisdn
    type: input
    validation: phone
    next: amount
  - id: amount
    type: input
    validation: number
    next: confirm
  - id: confirm
    type: confirmation
    text: "Buy {amount} airtime?"
    next: done
  - id: done
    type: end
    text: Thank you, your airtime is on the way.
`

func TestParseDocumentAcceptsValidFlow(t *testing.T) {
	doc, err := journey.ParseDocument(validDocument)
	require.NoError(t, err)
	assert.Equal(t, "Airtime Topup", doc.Name)
	assert.Len(t, doc.Steps, 5)
	assert.Equal(t, journey.StepMenu, doc.Steps[0].Type)
	assert.Len(t, doc.Steps[0].Options, 2)
}

func TestParseDocumentRejectsEmptyContent(t *testing.T) {
	_, err := journey.ParseDocument("   \n")
	appErr, ok := internal.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, internal.ErrorTypeValidation, appErr.Type)
}

func TestParseDocumentRejectsMalformedYAML(t *testing.T) {
	_, err := journey.ParseDocument("name: [unclosed")
	appErr, ok := internal.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, internal.ErrorTypeValidation, appErr.Type)
}

func TestParseDocumentReportsAllViolations(t *testing.T) {
	content := `
name: Broken
description: ""
steps:
  - id: a
    type: menu
  - id: a
    type: input
  - id: b
    type: end
    text: bye
    next: a
`
	_, err := journey.ParseDocument(content)
	appErr, ok := internal.IsAppError(err)
	require.True(t, ok)

	details, ok := appErr.Details.(internal.ValidationErrors)
	require.True(t, ok)

	fields := make([]string, 0, len(details.Errors))
	for _, violation := range details.Errors {
		fields = append(fields, violation.Field)
	}
	joined := strings.Join(fields, " ")
	assert.Contains(t, joined, "description")
	assert.Contains(t, joined, "steps[0].options") // menu without options
	assert.Contains(t, joined, "steps[1].id")      // duplicate id
	assert.Contains(t, joined, "steps[1].next")    // input without next
	assert.Contains(t, joined, "steps[2].next")    // end with next
}

func TestParseDocumentRejectsDanglingNextReference(t *testing.T) {
	content := `
name: Dangling
description: next points nowhere
steps:
  - id: start
    type: display
    text: hello
    next: nowhere
`
	_, err := journey.ParseDocument(content)
	appErr, ok := internal.IsAppError(err)
	require.True(t, ok)

	details, ok := appErr.Details.(internal.ValidationErrors)
	require.True(t, ok)
	require.Len(t, details.Errors, 1)
	assert.Equal(t, "steps[0].next", details.Errors[0].Field)
}

func TestParseDocumentRejectsUnknownStepType(t *testing.T) {
	content := `
name: Odd
description: unknown step type
steps:
  - id: start
    type: teleport
`
	_, err := journey.ParseDocument(content)
	appErr, ok := internal.IsAppError(err)
	require.True(t, ok)
	details, ok := appErr.Details.(internal.ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "steps[0].type", details.Errors[0].Field)
}

func TestDocumentEncodeRoundTrips(t *testing.T) {
	doc, err := journey.ParseDocument(validDocument)
	require.NoError(t, err)

	encoded, err := doc.Encode()
	require.NoError(t, err)

	again, err := journey.ParseDocument(encoded)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
