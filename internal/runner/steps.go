package runner

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"appcheck/internal/appcontext"
)

// runStep executes one step against the scenario's app context, with
// template variables resolved from vars.
func (r *Runner) runStep(ctx context.Context, step Step, ac *appcontext.AppContext, vars map[string]interface{}) StepResult {
	result := StepResult{
		Step:      step,
		StartTime: time.Now(),
		Result:    ResultPassed,
	}

	stepCtx := ctx
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	resolvedArgs, err := r.resolveArgs(step.Args, vars)
	if err != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("template resolution failed: %v", err)
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result
	}

	resp, actionErr := r.executeAction(stepCtx, step, ac, resolvedArgs)
	result.Response = resp
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if step.Store != "" && resp != nil {
		vars[step.Store] = storableResponse(resp)
		r.logger.Debug("step %s: stored result as %q\n", step.ID, step.Store)
	}

	if ok, reason := r.checkExpectations(step.Expected, resp, actionErr, ac); !ok {
		result.Result = ResultFailed
		result.Error = reason
	}

	return result
}

func (r *Runner) resolveArgs(args, vars map[string]interface{}) (map[string]interface{}, error) {
	if args == nil {
		return map[string]interface{}{}, nil
	}
	resolved, err := r.engine.Replace(args, vars)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]interface{}), nil
}

// executeAction dispatches a step to the app context.
func (r *Runner) executeAction(ctx context.Context, step Step, ac *appcontext.AppContext, args map[string]interface{}) (*appcontext.Response, error) {
	switch step.Action {
	case ActionNavigate:
		return nil, ac.Navigate(ctx, argString(args, "path", "/"))

	case ActionRequest:
		opts := appcontext.RequestOptions{
			Headers: argStringMap(args, "headers"),
			Body:    args["body"],
		}
		if timeout, err := argDuration(args, "timeout"); err != nil {
			return nil, err
		} else if timeout > 0 {
			opts.Timeout = timeout
		}
		method := strings.ToUpper(argString(args, "method", http.MethodGet))
		return ac.Request(ctx, method, argString(args, "path", "/"), opts)

	case ActionClick:
		selector := argString(args, "selector", "")
		if selector == "" {
			return nil, fmt.Errorf("step %s: click requires a selector", step.ID)
		}
		return nil, ac.Click(ctx, selector)

	case ActionFill:
		selector := argString(args, "selector", "")
		if selector == "" {
			return nil, fmt.Errorf("step %s: fill requires a selector", step.ID)
		}
		return nil, ac.Fill(ctx, selector, argString(args, "value", ""))

	case ActionWait:
		duration, err := argDuration(args, "duration")
		if err != nil {
			return nil, err
		}
		if duration <= 0 {
			return nil, fmt.Errorf("step %s: wait requires a positive duration", step.ID)
		}
		select {
		case <-time.After(duration):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}

	case ActionScreenshot:
		name := argString(args, "name", step.ID)
		_, err := ac.Screenshot(name)
		return nil, err

	default:
		return nil, fmt.Errorf("step %s: unknown action %q", step.ID, step.Action)
	}
}

// checkExpectations validates a step outcome. The returned reason names the
// first expectation that was not met.
func (r *Runner) checkExpectations(expected Expectation, resp *appcontext.Response, actionErr error, ac *appcontext.AppContext) (bool, string) {
	if expected.ExpectSuccess() {
		if actionErr != nil {
			return false, actionErr.Error()
		}
		if resp != nil && expected.Status == 0 && resp.Status >= http.StatusBadRequest {
			return false, fmt.Sprintf("unexpected HTTP status %d", resp.Status)
		}
	} else {
		failed := actionErr != nil || (resp != nil && resp.Status >= http.StatusBadRequest)
		if !failed {
			return false, "expected the step to fail, but it succeeded"
		}
	}

	for _, substr := range expected.ErrorContains {
		if actionErr == nil {
			return false, fmt.Sprintf("expected an error containing %q, got none", substr)
		}
		if !strings.Contains(actionErr.Error(), substr) {
			return false, fmt.Sprintf("error %q does not contain %q", actionErr.Error(), substr)
		}
	}

	if expected.Status != 0 {
		if resp == nil {
			return false, fmt.Sprintf("expected HTTP status %d, but the step produced no response", expected.Status)
		}
		if resp.Status != expected.Status {
			return false, fmt.Sprintf("expected HTTP status %d, got %d", expected.Status, resp.Status)
		}
	}

	if len(expected.BodyContains) > 0 || len(expected.BodyNotContains) > 0 {
		if resp == nil {
			return false, "body expectations require a response"
		}
		body := resp.BodyString()
		for _, substr := range expected.BodyContains {
			if !strings.Contains(body, substr) {
				return false, fmt.Sprintf("response body does not contain %q", substr)
			}
		}
		for _, substr := range expected.BodyNotContains {
			if strings.Contains(body, substr) {
				return false, fmt.Sprintf("response body contains %q", substr)
			}
		}
	}

	if len(expected.JSON) > 0 {
		if resp == nil {
			return false, "json expectations require a response"
		}
		decoded, err := resp.JSON()
		if err != nil {
			return false, err.Error()
		}
		for path, want := range expected.JSON {
			got, found := jsonLookup(decoded, path)
			if !found {
				return false, fmt.Sprintf("json path %q not found in response", path)
			}
			if !jsonEqual(got, want) {
				return false, fmt.Sprintf("json path %q: expected %v, got %v", path, want, got)
			}
		}
	}

	if expected.SelectorVisible != "" {
		visible, err := ac.SelectorVisible(expected.SelectorVisible)
		if err != nil {
			return false, err.Error()
		}
		if !visible {
			return false, fmt.Sprintf("selector %q is not visible", expected.SelectorVisible)
		}
	}

	for selector, want := range expected.SelectorText {
		text, err := ac.SelectorText(selector)
		if err != nil {
			return false, err.Error()
		}
		if !strings.Contains(text, want) {
			return false, fmt.Sprintf("selector %q text %q does not contain %q", selector, text, want)
		}
	}

	return true, ""
}

// storableResponse converts a response into the form stored for templating:
// decoded JSON when the body parses, the raw text otherwise.
func storableResponse(resp *appcontext.Response) interface{} {
	if decoded, err := resp.JSON(); err == nil {
		return decoded
	}
	return resp.BodyString()
}

// jsonLookup resolves a dotted path against decoded JSON. Numeric segments
// index into arrays.
func jsonLookup(value interface{}, path string) (interface{}, bool) {
	current := value
	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]interface{}:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// jsonEqual compares a decoded JSON value to an expectation from YAML,
// normalizing the numeric types the two decoders produce.
func jsonEqual(got, want interface{}) bool {
	if gotNum, ok := asFloat(got); ok {
		if wantNum, ok := asFloat(want); ok {
			return gotNum == wantNum
		}
	}
	return reflect.DeepEqual(got, want)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func argString(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func argStringMap(args map[string]interface{}, key string) map[string]string {
	raw, ok := args[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func argDuration(args map[string]interface{}, key string) (time.Duration, error) {
	raw, ok := args[key]
	if !ok {
		return 0, nil
	}
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("invalid duration value %v", raw)
	}
}
