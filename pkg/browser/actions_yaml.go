package browser

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ravensec/xssentinel/pkg/model"
)

// LoadActionsFromFile reads a YAML-described action sequence from disk, the
// same shape options.preActions/auth accept inline, for callers that keep
// long pre-test recipes in their own file instead of the config document.
// Grounded on the teacher's pkg/browser/actions.go LoadBrowserActions.
func LoadActionsFromFile(path string) ([]model.Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var actions []model.Action
	if err := yaml.Unmarshal(data, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
