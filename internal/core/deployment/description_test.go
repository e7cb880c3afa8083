package deployment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(n int64) *int64 { return &n }

func TestDescription_WithRunNumber(t *testing.T) {
	got := Description("Created by ci", int64Ptr(42))
	assert.Equal(t, "Created by ci (run_number=42)", got)
}

func TestDescription_DefaultPrefix(t *testing.T) {
	got := Description("", int64Ptr(7))
	assert.Equal(t, DefaultDescriptionPrefix+" (run_number=7)", got)
}

func TestDescription_NoRunNumber(t *testing.T) {
	assert.Equal(t, "", Description("Created by ci", nil))
}

func TestExtractRunNumber_TableDriven(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        int64
		found       bool
	}{
		{"own stamp", "Created by promoter (run_number=41)", 41, true},
		{"other prefix", "Created by webfactory/create-aws-codedeploy-deployment (run_number=1234)", 1234, true},
		{"first stamp wins", "run_number=3 run_number=9", 3, true},
		{"no stamp", "Deployed from the console", 0, false},
		{"empty", "", 0, false},
		{"no digits", "run_number=abc", 0, false},
		{"overflow", "run_number=99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractRunNumber(tt.description)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescription_RoundTrip(t *testing.T) {
	got, found := ExtractRunNumber(Description("", int64Ptr(9001)))
	assert.True(t, found)
	assert.Equal(t, int64(9001), got)
}
