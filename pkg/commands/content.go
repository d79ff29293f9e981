package commands

import (
	"context"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/shell"
)

const previewsReprocessUsage = `Usage: previews-reprocess [<content id> <revision id>] | [--<filter key>=<filter value> ...]

Tells OAE to reprocess previews for content and revisions that match a provided set of filters. The
options for filter keys are the following:

   content.createdBy=<user id>         Filter down to revisions of content items created by this user
   content.resourceSubType=<type>      Filter down to content items of this resource sub-type (e.g.,
                                       file, link, collabdoc)
   content.previewStatus=<status>      Filter down to content items whose latest revision preview status
                                       is the provided status
   revision.mime=<mime>                Filter down to revisions who have this mime type
   revision.createdAfter=<timestamp>   Filter down to revisions that were created after this date in
                                       millis since the epoch
   revision.createdBefore=<timestamp>  Filter down to revisions that were created before this date in
                                       millis since the epoch
   revision.createdBy=<user id>        Filter down to revisions that were created by this user

Examples:

Reprocess all JPG revisions:       previews-reprocess --content.resourceSubType=file --revision.mime=image/jpg
Reprocess a specific revision:     previews-reprocess c:cam:dfjDFJ3hf r:cam:sfjw93-_j`

// filterScopes are the filter prefixes and the form field prefix each maps to.
var filterScopes = map[string]string{
	"content":  "content_",
	"revision": "revision_",
}

// parseReprocessArgs splits raw arguments into positionals and
// --content.<key>/--revision.<key> filters. A filter without "=" takes the
// next word as its value when that word is not itself a flag.
func parseReprocessArgs(args []string) ([]string, map[string]string, error) {
	var positional []string
	filters := make(map[string]string)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "--") {
			positional = append(positional, a)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(a, "--"), "=")
		if !hasValue {
			value = "true"
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}
		}
		scope, key, _ := strings.Cut(name, ".")
		prefix, ok := filterScopes[scope]
		if !ok || key == "" {
			return nil, nil, invalid(errors.ErrValidationFlags, "filter", previewsReprocessUsage,
				"Unknown filter %q", "--"+name)
		}
		filters[prefix+key] = value
	}
	return positional, filters, nil
}

// PreviewsReprocess returns the previews-reprocess command. Its filters are
// dotted long flags, so it parses its raw arguments itself.
func PreviewsReprocess() *shell.Command {
	return &shell.Command{
		Name:     "previews-reprocess",
		Summary:  "Reprocess previews for filtered content and revisions",
		Usage:    previewsReprocessUsage,
		Category: help.CategoryContent,
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			ids, filters, err := parseReprocessArgs(inv.Raw)
			if err != nil {
				return err
			}
			switch {
			case len(ids) > 0 && len(filters) > 0:
				return errors.Validation(errors.ErrValidationConflict, "filter",
					"If the content ID and revision ID are provided, the filters should not be provided.").
					WithUsage(previewsReprocessUsage)
			case len(ids) == 0 && len(filters) == 0:
				return errors.Validation(errors.ErrValidationRequired, "filter",
					"One of content ID and revision ID or filters must be provided.").
					WithUsage(previewsReprocessUsage)
			case len(ids) > 0 && len(ids) != 2:
				return errors.Validation(errors.ErrValidationInvalidValue, "content and revision id",
					"If specifying a particular revision, both content and revision ID should be specified").
					WithUsage(previewsReprocessUsage)
			}

			h, err := active(env)
			if err != nil {
				return err
			}
			if len(ids) == 2 {
				err = env.API.ReprocessPreview(ctx, h, ids[0], ids[1])
			} else {
				err = env.API.ReprocessPreviews(ctx, h, filters)
			}
			if err != nil {
				return err
			}
			env.Out.Message("Reprocessing previews started")
			return nil
		},
	}
}

const contentGetMembersUsage = "Usage: content-get-members <content id> [-l <limit>] [-s <start>]"

// defaultMembersLimit is the page size when -l is not given.
const defaultMembersLimit = 12

// ContentGetMembers returns the content-get-members command.
func ContentGetMembers() *shell.Command {
	return &shell.Command{
		Name:     "content-get-members",
		Summary:  "Get a list of content members",
		Usage:    contentGetMembersUsage,
		Category: help.CategoryContent,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("content-get-members")
			fs.StringP("limit", "l", "", "The maximum number of members to get")
			fs.StringP("start", "s", "", "Where in the list to start returning members")
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			contentID := arg(inv, 0)
			if contentID == "" {
				return errors.Validation(errors.ErrValidationRequired, "contentId",
					"Required content id as the first parameter").WithUsage(contentGetMembersUsage)
			}
			limit, err := Number(flagString(inv, "limit"), defaultMembersLimit)
			if err != nil || limit <= 0 {
				return invalid(errors.ErrValidationInvalidValue, "limit", contentGetMembersUsage,
					"Must be a positive number, got %q", flagString(inv, "limit"))
			}

			h, err := active(env)
			if err != nil {
				return err
			}
			doc, err := env.API.GetMembers(ctx, h, contentID, flagString(inv, "start"), limit)
			if err != nil {
				return err
			}
			return env.Out.Print(doc)
		},
	}
}
