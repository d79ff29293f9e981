package commands

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/shell"
)

const execUsage = `Usage: exec <path with query string (e.g., "/api/search/general?q=Branden Visser&limit=10")> [--method=<method>] [--data=<data>] [--file=<file>]

Data and file parameters take the form key=value and may be repeated. With
any data or file the method defaults to POST, otherwise to GET. Files are
uploaded as multipart form data.`

// Exec returns the exec command, which sends an arbitrary request to the
// current tenant as the current user.
func Exec() *shell.Command {
	return &shell.Command{
		Name:     "exec",
		Summary:  "Perform an arbitrary HTTP request to the current tenant as the current user",
		Usage:    execUsage,
		Category: help.CategoryRequest,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("exec")
			fs.StringP("method", "m", "", "The HTTP method to use")
			fs.StringArrayP("data", "d", nil, "A key=value data parameter")
			fs.StringArrayP("file", "F", nil, "A key=path file parameter")
			return fs
		},
		Run: runExec,
	}
}

func runExec(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
	path := arg(inv, 0)
	if path == "" {
		return errors.Validation(errors.ErrValidationRequired, "path",
			`Must specify a request path with query string (e.g., "/api/user/import")`).WithUsage(execUsage)
	}

	method := strings.ToUpper(flagString(inv, "method"))
	data := flagArray(inv, "data")
	files := flagArray(inv, "file")
	hasBody := len(data) > 0 || len(files) > 0
	if method == http.MethodGet && hasBody {
		return errors.Validation(errors.ErrValidationConflict, "method",
			"Cannot send a GET request with -d or -F data parameters").WithUsage(execUsage)
	}
	if method == "" {
		method = http.MethodGet
		if hasBody {
			method = http.MethodPost
		}
	}

	form := url.Values{}
	for _, kv := range data {
		k, v, ok := ParseKeyValue(kv)
		if !ok {
			return invalid(errors.ErrValidationInvalidFormat, "data", execUsage, `Invalid key-value pair: "%s"`, kv)
		}
		form.Add(k, v)
	}
	uploads := make(map[string]string, len(files))
	for _, kv := range files {
		k, p, ok := ParseKeyValue(kv)
		if !ok {
			return invalid(errors.ErrValidationInvalidFormat, "file", execUsage, `Invalid key-value pair: "%s"`, kv)
		}
		if _, err := os.Stat(p); err != nil {
			return invalid(errors.ErrValidationNotFound, "file", execUsage, `File "%s" does not exist`, p)
		}
		uploads[k] = p
	}

	h, err := active(env)
	if err != nil {
		return err
	}
	doc, err := env.API.Request(ctx, h, path, method, form, uploads)
	if err != nil {
		return err
	}
	return env.Out.Print(doc)
}
