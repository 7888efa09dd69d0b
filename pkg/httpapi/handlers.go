package httpapi

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ravensec/xssentinel/lib"
	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/ravensec/xssentinel/pkg/monitor"
	"github.com/ravensec/xssentinel/pkg/reducer"
)

// submissionRequest is the POST / body: an already-captured HTTP exchange
// plus the single payload to evaluate against it. Byte-valued fields are
// base64-encoded per §6.
type submissionRequest struct {
	HTTPResponse string          `json:"http-response" validate:"required,base64"`
	HTTPURL      string          `json:"http-url" validate:"required,url"`
	HTTPHeaders  string          `json:"http-headers" validate:"omitempty,base64"`
	Payload      string          `json:"payload" validate:"required"`
	Browser      model.Browser   `json:"browser" validate:"omitempty,oneof=chromium firefox webkit"`
	Options      *requestOptions `json:"options,omitempty"`
}

type requestOptions struct {
	VerifyExecution bool `json:"verifyExecution"`
}

type enhanced struct {
	Detected         bool              `json:"detected"`
	Executed         bool              `json:"executed"`
	Severity         string            `json:"severity"`
	Confidence       float64           `json:"confidence"`
	Messages         []string          `json:"messages"`
	DetectionMethods []string          `json:"detectionMethods"`
	Context          map[string]string `json:"context"`
	Timing           map[string]int64  `json:"timing"`
	Metadata         map[string]string `json:"metadata"`
}

type submissionResponse struct {
	Value    int      `json:"value"`
	Msg      string   `json:"msg"`
	Enhanced enhanced `json:"enhanced"`
}

const httpAPISessionName = "httpapi-render"

// handleSubmission implements POST /: render the captured response body in
// an isolated page, replay the monitor agent against it, and report
// whether the supplied payload reflected and/or executed.
func (s *Server) handleSubmission(c *fiber.Ctx) error {
	s.activeGauge.inc()
	defer s.activeGauge.dec()

	var req submissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(submissionResponse{Value: 0, Msg: "invalid JSON body"})
	}
	if err := validator.New().Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(submissionResponse{Value: 0, Msg: err.Error()})
	}

	body, err := lib.Base64Decode(req.HTTPResponse)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(submissionResponse{Value: 0, Msg: "http-response is not valid base64"})
	}
	var headerBlock []byte
	if req.HTTPHeaders != "" {
		headerBlock, err = lib.Base64Decode(req.HTTPHeaders)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(submissionResponse{Value: 0, Msg: "http-headers is not valid base64"})
		}
	}
	engine := req.Browser
	if engine == "" {
		engine = model.BrowserChromium
	}

	start := time.Now()
	result, err := s.render(string(body), req.Payload, engine)
	if err != nil {
		log.Error().Err(err).Msg("submission render failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(submissionResponse{Value: 0, Msg: "renderer unavailable"})
	}
	renderMS := time.Since(start).Milliseconds()

	result = reducer.Score(result)
	result = reducer.ApplyCSP(result, cspHeaderValues(string(headerBlock)))

	resp := submissionResponse{
		Enhanced: enhanced{
			Detected:         result.Reflected,
			Executed:         result.Executed,
			Severity:         result.Severity,
			Confidence:       result.Confidence,
			DetectionMethods: result.DetectionMethods,
			Context:          map[string]string{"url": req.HTTPURL},
			Timing:           map[string]int64{"renderMs": renderMS},
			Metadata:         map[string]string{"browser": string(engine)},
		},
	}
	if result.CSPBlocked != nil && *result.CSPBlocked {
		resp.Enhanced.Messages = append(resp.Enhanced.Messages, "content security policy would block inline script execution")
	}

	if result.Reflected || result.Executed {
		resp.Value = 1
		resp.Msg = "xss detected"
		return c.Status(fiber.StatusOK).JSON(resp)
	}
	resp.Value = 0
	resp.Msg = "no xss detected"
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// render loads body into a throwaway page as a data: document, installs the
// monitor agent tagged with a fresh marker, and returns the resulting
// TestResult. The body is rendered as submitted; the marker is not spliced
// into it or into the payload.
func (s *Server) render(body, payload string, engineName model.Browser) (model.TestResult, error) {
	session, err := s.sessions.GetSession(httpAPISessionName, engineName, model.SessionOptions{})
	if err != nil {
		return model.TestResult{}, fmt.Errorf("acquire render session: %w", err)
	}
	page, err := session.NewPage()
	if err != nil {
		return model.TestResult{}, fmt.Errorf("acquire render page: %w", err)
	}
	defer session.ReleasePage(page)

	marker := uuid.NewString()[:8]
	agent, err := monitor.Install(page, marker)
	if err != nil {
		return model.TestResult{}, fmt.Errorf("install monitor: %w", err)
	}

	dataURL := "data:text/html;base64," + lib.Base64Encode(body)
	if err := page.Navigate(dataURL); err != nil {
		return model.TestResult{}, fmt.Errorf("navigate to rendered response: %w", err)
	}
	if err := page.Timeout(5 * time.Second).WaitLoad(); err != nil {
		log.Debug().Err(err).Msg("wait load timed out rendering submitted response")
	}
	time.Sleep(500 * time.Millisecond)

	ev, err := agent.Snapshot()
	if err != nil {
		return model.TestResult{}, fmt.Errorf("snapshot monitor evidence: %w", err)
	}

	reflected := containsPayload(body, payload)
	verdict := monitor.Evaluate(ev, reflected, nil)
	return model.TestResult{
		Payload:          payload,
		Reflected:        verdict.Reflected,
		Executed:         verdict.Executed,
		DetectionMethods: verdict.Methods,
		CapturedAt:       time.Now(),
	}, nil
}

func containsPayload(body, payload string) bool {
	return payload != "" && strings.Contains(body, payload)
}

// cspHeaderValues pulls Content-Security-Policy lines out of the decoded
// raw header block ("Key: Value" per line, as captured from the wire).
func cspHeaderValues(headerBlock string) []string {
	const prefix = "content-security-policy:"
	var values []string
	for _, line := range strings.Split(headerBlock, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			values = append(values, strings.TrimSpace(line[len(prefix):]))
		}
	}
	return values
}

// handleHealth implements GET /health.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(fiber.Map{
		"status":             "ok",
		"version":            Version,
		"uptime":             time.Since(s.startedAt).Seconds(),
		"memory":             fiber.Map{"allocBytes": mem.Alloc, "sysBytes": mem.Sys},
		"activeRequests":     s.activeGauge.value(),
		"maxConcurrentPages": 5,
		"availableBrowsers":  []model.Browser{model.BrowserChromium, model.BrowserFirefox, model.BrowserWebkit},
		"browserPool":        fiber.Map{"sessions": s.sessions.ListSessions()},
	})
}
