package browser

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ravensec/xssentinel/pkg/model"
)

// ExecuteAction runs one step of the declarative action vocabulary against
// page, used for both the login recipe (§4.4) and options.preActions.
// Adapted near-verbatim from the teacher's pkg/browser/actions.go
// ExecuteActions switch, generalized from the teacher's local Action type to
// model.Action.
func ExecuteAction(page *rod.Page, action model.Action) error {
	switch action.Type {
	case model.ActionNavigate:
		return page.Navigate(action.URL)

	case model.ActionClick:
		el, err := page.Element(action.Selector)
		if err != nil {
			return fmt.Errorf("click: locate %q: %w", action.Selector, err)
		}
		return el.Click(proto.InputMouseButtonLeft, 1)

	case model.ActionFill:
		el, err := page.Element(action.Selector)
		if err != nil {
			return fmt.Errorf("fill: locate %q: %w", action.Selector, err)
		}
		if err := el.SelectAllText(); err == nil {
			_ = el.Input("")
		}
		return el.Input(action.Value)

	case model.ActionWait:
		return waitFor(page, action)

	case model.ActionAssert:
		return assertCondition(page, action)

	case model.ActionScroll:
		el, err := page.Element(action.Selector)
		if err != nil {
			return fmt.Errorf("scroll: locate %q: %w", action.Selector, err)
		}
		return el.ScrollIntoView()

	case model.ActionScreenshot:
		data, err := page.Screenshot(false, nil)
		if err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		if action.File != "" {
			return os.WriteFile(action.File, data, 0o644)
		}
		return nil

	case model.ActionSleep:
		time.Sleep(time.Duration(action.Duration) * time.Millisecond)
		return nil

	case model.ActionEvaluate:
		_, err := page.Eval(action.Expression)
		return err

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// ExecuteActions runs a sequence in order, stopping at the first error.
func ExecuteActions(page *rod.Page, actions []model.Action) error {
	for i, action := range actions {
		if err := ExecuteAction(page, action); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, action.Type, err)
		}
	}
	return nil
}

func waitFor(page *rod.Page, action model.Action) error {
	switch action.For {
	case model.WaitLoad, "":
		return page.WaitLoad()
	case model.WaitVisible:
		el, err := page.Element(action.Selector)
		if err != nil {
			return err
		}
		return el.WaitVisible()
	case model.WaitHidden:
		el, err := page.Element(action.Selector)
		if err != nil {
			return err
		}
		return el.WaitInvisible()
	case model.WaitEnabled:
		el, err := page.Element(action.Selector)
		if err != nil {
			return err
		}
		return el.WaitEnabled()
	default:
		return fmt.Errorf("unknown wait condition %q", action.For)
	}
}

func assertCondition(page *rod.Page, action model.Action) error {
	switch action.Condition {
	case model.AssertVisible:
		el, err := page.Element(action.Selector)
		if err != nil {
			return err
		}
		visible, err := el.Visible()
		if err != nil {
			return err
		}
		if !visible {
			return fmt.Errorf("assert visible: %q is not visible", action.Selector)
		}
		return nil

	case model.AssertHidden:
		el, err := page.Element(action.Selector)
		if err != nil {
			return nil // absent element satisfies "hidden"
		}
		visible, err := el.Visible()
		if err != nil {
			return err
		}
		if visible {
			return fmt.Errorf("assert hidden: %q is visible", action.Selector)
		}
		return nil

	case model.AssertContains, model.AssertEquals:
		el, err := page.Element(action.Selector)
		if err != nil {
			return fmt.Errorf("assert: locate %q: %w", action.Selector, err)
		}
		text, err := el.Text()
		if err != nil {
			return err
		}
		if action.Condition == model.AssertEquals && text != action.Value {
			return fmt.Errorf("assert equals: %q != %q", text, action.Value)
		}
		if action.Condition == model.AssertContains && !strings.Contains(text, action.Value) {
			return fmt.Errorf("assert contains: %q not found in %q", action.Value, text)
		}
		return nil

	default:
		return fmt.Errorf("unknown assert condition %q", action.Condition)
	}
}
