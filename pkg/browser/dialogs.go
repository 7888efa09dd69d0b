package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// AutoAcceptDialogs installs a CDP-level handler that accepts every
// JavaScript dialog (alert/confirm/prompt) a page raises, so a detection run
// never stalls behind a blocking alert(). Grounded on the teacher's
// pkg/browser/dialogs.go CloseAllJSDialogs, generalized into something the
// in-page monitor can subscribe alongside, since dismissing the dialog here
// and recording it for the verdict contract are two different concerns that
// both need to observe the same event stream. Callers run the returned wait
// function in its own goroutine and stop it by cancelling the page's
// context.
func AutoAcceptDialogs(page *rod.Page, onDialog func(kind, message string)) func() {
	return page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		if onDialog != nil {
			onDialog(string(e.Type), e.Message)
		}
		err := proto.PageHandleJavaScriptDialog{
			Accept:     true,
			PromptText: "",
		}.Call(page)
		if err != nil {
			log.Debug().Err(err).Msg("failed to auto-accept javascript dialog")
		}
	})
}
