package codedeploy

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// decodeInput copies a profile bag onto an SDK input struct. Keys match SDK
// field names case-insensitively, so appspec.yml can use the API's camelCase
// names ("serviceRoleArn", "ec2TagFilters"). Keys with no matching field are
// returned instead of failing, because one bag feeds both create and update.
func decodeInput(bag map[string]any, out any) (unused []string, err error) {
	if len(bag) == 0 {
		return nil, nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(bag); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return md.Unused, nil
}
