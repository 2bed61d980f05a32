package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/storyforge/internal/generation"
)

const serverInstructions = `storyforge turns short story inputs into illustrated, optionally narrated books and typesets them with LaTeX.

Core concepts:
- Project: one book. Has a type (story, educational, comic, ecommerce) and a settings bag used at render time.
- Content item: text, image or audio, ordered by order_index. Items with the same order_index / 10 form one scene.
- Template: a LaTeX skeleton with {title}, {author}, {date} and {content} placeholders, chosen by project type.

Default workflow:
1) Optionally call estimate_generation_time and rate_limit_status.
2) create_book generates the story, illustrations and narration into a new project. Per-scene failures are reported, not fatal.
3) Adjust with list_content / update_content / add_content.
4) render_latex to inspect the source, render_document to compile project_{id}.pdf.
5) create_audiobook_companion for a narration track listing.

Errors come back as tool errors with a stable code (NOT_FOUND, RATE_LIMITED, COMPILATION_FAILED, ...).

Docs:
- storyforge://docs/index
- storyforge://docs/rendering
- storyforge://docs/errors
- storyforge://styles
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "storyforge://docs/index",
		Name:        "docs_index",
		Title:       "storyforge docs index",
		Description: "Entry point: what the tools do and which doc to read next.",
		Content: `# storyforge docs

## Tools

- Projects: ` + "`create_project`, `list_projects`, `get_project`, `update_project`, `delete_project`" + `
- Content: ` + "`add_content`, `list_content`, `update_content`, `delete_content`" + `
- Templates: ` + "`list_templates`, `get_template`" + `
- Generation: ` + "`create_book`, `generate_image`" + `
- Documents: ` + "`render_latex`, `render_document`, `create_audiobook_companion`" + `
- Status: ` + "`estimate_generation_time`, `rate_limit_status`, `get_statistics`, `system_status`" + `

## Scenes

` + "`create_book`" + ` stores scene i as text at order_index 2i, its illustration at 2i+1 and its narration at 2i.
The renderer groups items by ` + "`order_index / 10`" + `, so to force one heading per story scene space them by 10 with ` + "`update_content`" + `.

## Deletion

Deleting a project only marks it deleted. ` + "`get_project`" + ` still returns it; rendering it returns NOT_FOUND. Files are never removed.

## Read next

- ` + "`storyforge://docs/rendering`" + ` for settings and covers.
- ` + "`storyforge://docs/errors`" + ` for error codes.
- ` + "`storyforge://styles`" + ` for illustration styles.
`,
	},
	{
		URI:         "storyforge://docs/rendering",
		Name:        "docs_rendering",
		Title:       "Rendering settings",
		Description: "Project settings read by render_document and render_latex.",
		Content: `# Rendering settings

Settings are stored on the project and can be overridden per call with ` + "`settings`" + `.

| Key | Meaning | Default |
|---|---|---|
| ` + "`author`" + ` | author line | StoryForge AI |
| ` + "`book_type`" + ` | ` + "`comic`" + ` uses section headings, anything else chapters | project type |
| ` + "`image_width`" + ` | fraction of line width | 0.8 |
| ` + "`center_images`" + ` | center figures | true |
| ` + "`cover_style`" + ` | modern, classic or children; enables a cover page | none |
| ` + "`cover_image`" + ` | image path for the cover | none |

Images whose files are missing are skipped silently. Text is escaped for LaTeX; straight quotes become typographic quotes.

Templates are picked by ` + "`template_id`" + `, else by project type, else ` + "`children_storybook`" + `.
A second compile pass runs by default; pass ` + "`compile_twice: false`" + ` to skip it.
`,
	},
	{
		URI:         "storyforge://docs/errors",
		Name:        "docs_errors",
		Title:       "Error codes",
		Description: "Stable error codes returned by tools and how to recover.",
		Content: `# Error codes

| Code | Meaning | Recovery |
|---|---|---|
| NOT_FOUND | project, content, template or audio missing | check IDs |
| INVALID_INPUT | bad arguments | fix the request |
| RATE_LIMITED | window full; ` + "`details.retry_after_seconds`" + ` | wait, see ` + "`rate_limit_status`" + ` |
| MALFORMED_GENERATION | model returned an unusable story | retry |
| PROVIDER_NOT_CONFIGURED | API key missing | see ` + "`system_status`" + ` |
| PROVIDER_ERROR | provider rejected the call | check the message |
| MISSING_VARIABLE | template placeholder without value | fix the template |
| TOOLCHAIN_UNAVAILABLE | no LaTeX installed | use ` + "`render_latex`" + ` |
| COMPILATION_TIMEOUT | compile exceeded the timeout | simplify the document |
| COMPILATION_FAILED | LaTeX error; ` + "`details.diagnostics`" + ` | inspect ` + "`render_latex`" + ` output |
`,
	},
}

func stylesDoc() docResource {
	var b strings.Builder
	b.WriteString("# Illustration styles\n\nPass one of these as `art_style` or `style`:\n\n")
	for _, s := range generation.Styles() {
		b.WriteString("- `" + s + "`\n")
	}
	return docResource{
		URI:         "storyforge://styles",
		Name:        "styles",
		Title:       "Illustration styles",
		Description: "Art styles understood by the image generator.",
		Content:     b.String(),
	}
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range append(docResources, stylesDoc()) {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
