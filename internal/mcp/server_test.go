package mcp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/storyforge/internal/generation"
	"github.com/rpggio/storyforge/internal/testserver"
	"github.com/stretchr/testify/require"
)

func TestServer_ListsTools(t *testing.T) {
	ts := testserver.New(t)

	tools, err := ts.Session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
		require.NotEmpty(t, tool.Description, tool.Name)
		require.NotNil(t, tool.InputSchema, tool.Name)
	}
	sort.Strings(names)
	require.Equal(t, []string{
		"add_content", "create_audiobook_companion", "create_book", "create_project",
		"delete_content", "delete_project", "estimate_generation_time", "generate_image",
		"get_project", "get_statistics", "get_template", "list_content", "list_projects",
		"list_templates", "rate_limit_status", "render_document", "render_latex",
		"system_status", "update_content", "update_project",
	}, names)
}

type projectPayload struct {
	Project struct {
		ID       string         `json:"id"`
		Name     string         `json:"name"`
		Type     string         `json:"type"`
		Status   string         `json:"status"`
		Settings map[string]any `json:"settings"`
	} `json:"project"`
}

func TestServer_ProjectLifecycle(t *testing.T) {
	ts := testserver.New(t)

	var created projectPayload
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "create_project", map[string]any{
		"name":     "Fox",
		"type":     "story",
		"settings": map[string]any{"author": "Ada"},
	}), &created))
	require.NotEmpty(t, created.Project.ID)
	require.Equal(t, "active", created.Project.Status)
	require.Equal(t, "Ada", created.Project.Settings["author"])

	var updated projectPayload
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "update_project", map[string]any{
		"id":   created.Project.ID,
		"name": "Brave Fox",
	}), &updated))
	require.Equal(t, "Brave Fox", updated.Project.Name)

	var list struct {
		Projects []struct {
			ID string `json:"id"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "list_projects", map[string]any{"type": "story"}), &list))
	require.Len(t, list.Projects, 1)

	ts.CallTool(t, "delete_project", map[string]any{"id": created.Project.ID})

	var got projectPayload
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "get_project", map[string]any{"id": created.Project.ID}), &got))
	require.Equal(t, "deleted", got.Project.Status)

	require.NoError(t, json.Unmarshal(ts.CallTool(t, "list_projects", nil), &list))
	require.Empty(t, list.Projects)

	apiErr := ts.CallToolError(t, "render_latex", map[string]any{"project_id": created.Project.ID})
	require.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestServer_ProjectErrors(t *testing.T) {
	ts := testserver.New(t)

	require.Equal(t, "NOT_FOUND", ts.CallToolError(t, "get_project", map[string]any{"id": "missing"}).Code)
	require.Equal(t, "INVALID_INPUT", ts.CallToolError(t, "create_project", map[string]any{"name": " ", "type": "story"}).Code)
	require.Equal(t, "INVALID_INPUT", ts.CallToolError(t, "update_project", map[string]any{"id": "x", "status": "archived"}).Code)
}

func TestServer_ContentLifecycle(t *testing.T) {
	ts := testserver.New(t)

	var proj projectPayload
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "create_project", map[string]any{"name": "P", "type": "story"}), &proj))

	var added struct {
		Content struct {
			ID         string `json:"id"`
			OrderIndex int    `json:"order_index"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "add_content", map[string]any{
		"project_id":   proj.Project.ID,
		"type":         "text",
		"content_text": "Once upon a time",
	}), &added))
	ts.CallTool(t, "add_content", map[string]any{
		"project_id":  proj.Project.ID,
		"type":        "image",
		"image_path":  "/nowhere/fox.png",
		"order_index": 1,
		"metadata":    map[string]any{"caption": "The fox"},
	})

	require.NoError(t, json.Unmarshal(ts.CallTool(t, "update_content", map[string]any{
		"id":          added.Content.ID,
		"order_index": 20,
	}), &added))
	require.Equal(t, 20, added.Content.OrderIndex)

	require.Equal(t, "INVALID_INPUT", ts.CallToolError(t, "update_content", map[string]any{
		"id":           added.Content.ID,
		"image_path":   "static/generated/x.png",
		"content_text": "",
	}).Code)

	var list struct {
		Items []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "list_content", map[string]any{"project_id": proj.Project.ID}), &list))
	require.Len(t, list.Items, 2)
	require.Equal(t, "image", list.Items[0].Type)
	require.Equal(t, "text", list.Items[1].Type)

	ts.CallTool(t, "delete_content", map[string]any{"id": added.Content.ID})
	require.Equal(t, "NOT_FOUND", ts.CallToolError(t, "delete_content", map[string]any{"id": added.Content.ID}).Code)

	require.Equal(t, "NOT_FOUND", ts.CallToolError(t, "add_content", map[string]any{
		"project_id": "missing", "type": "text", "content_text": "x",
	}).Code)
	require.Equal(t, "INVALID_INPUT", ts.CallToolError(t, "add_content", map[string]any{
		"project_id": proj.Project.ID, "type": "video",
	}).Code)

	ts.CallTool(t, "delete_project", map[string]any{"id": proj.Project.ID})
	require.Equal(t, "NOT_FOUND", ts.CallToolError(t, "add_content", map[string]any{
		"project_id": proj.Project.ID, "type": "text", "content_text": "after delete",
	}).Code)
}

func TestServer_Templates(t *testing.T) {
	ts := testserver.New(t)

	var list struct {
		Templates []struct {
			ID   string `json:"id"`
			Body string `json:"latex_template"`
		} `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "list_templates", nil), &list))
	require.Len(t, list.Templates, 3)
	for _, tpl := range list.Templates {
		require.Empty(t, tpl.Body)
	}

	var got struct {
		Template struct {
			ID   string `json:"id"`
			Body string `json:"latex_template"`
		} `json:"template"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "get_template", map[string]any{"id": "comic_book"}), &got))
	require.Contains(t, got.Template.Body, "{content}")

	require.Equal(t, "NOT_FOUND", ts.CallToolError(t, "get_template", map[string]any{"id": "nope"}).Code)
}

func TestServer_BookToDocument(t *testing.T) {
	ts := testserver.New(t)

	var created struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
		Scenes []struct {
			ImagePath string `json:"image_path"`
			AudioPath string `json:"audio_path"`
		} `json:"scenes"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "create_book", map[string]any{
		"title":          "Fox & Friends",
		"character_name": "Fox",
		"art_style":      "cartoon",
	}), &created))
	require.Len(t, created.Scenes, 3)
	for _, scene := range created.Scenes {
		require.FileExists(t, scene.ImagePath)
		require.FileExists(t, scene.AudioPath)
	}
	id := created.Project.ID

	var src struct {
		LaTeX string `json:"latex"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "render_latex", map[string]any{
		"project_id": id,
		"settings":   map[string]any{"cover_style": "children"},
	}), &src))
	require.Contains(t, src.LaTeX, `Fox \& Friends`)
	require.Contains(t, src.LaTeX, `\begin{titlepage}`)
	require.Contains(t, src.LaTeX, `\includegraphics`)

	var doc struct {
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "render_document", map[string]any{"project_id": id}), &doc))
	require.Equal(t, filepath.Join(ts.ExportDir, "project_"+id+".pdf"), doc.Path)
	require.FileExists(t, doc.Path)

	require.NoError(t, json.Unmarshal(ts.CallTool(t, "create_audiobook_companion", map[string]any{"project_id": id, "name": "fox"}), &doc))
	require.Equal(t, filepath.Join(ts.ExportDir, "fox_audiobook.pdf"), doc.Path)
	require.FileExists(t, doc.Path)

	var stats struct {
		TotalProjects int `json:"total_projects"`
		TotalContent  int `json:"total_content"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "get_statistics", nil), &stats))
	require.Equal(t, 1, stats.TotalProjects)
	require.Equal(t, 9, stats.TotalContent)
}

func TestServer_AudiobookWithoutAudio(t *testing.T) {
	ts := testserver.New(t)

	var created projectPayload
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "create_book", map[string]any{
		"title":          "Quiet",
		"character_name": "Owl",
		"generate_audio": false,
	}), &created))
	require.Zero(t, ts.Generator.NarrationCalls)

	apiErr := ts.CallToolError(t, "create_audiobook_companion", map[string]any{"project_id": created.Project.ID})
	require.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestServer_GenerationErrors(t *testing.T) {
	ts := testserver.New(t)

	ts.Generator.StoryErr = &generation.MalformedError{Reason: "story has no scenes"}
	require.Equal(t, "MALFORMED_GENERATION", ts.CallToolError(t, "create_book", map[string]any{
		"title": "Fox", "character_name": "Fox",
	}).Code)
	require.Equal(t, "INVALID_INPUT", ts.CallToolError(t, "create_book", map[string]any{
		"title": "Fox", "character_name": "",
	}).Code)

	ts.Generator.ImageErr = generation.ErrNotConfigured
	require.Equal(t, "PROVIDER_NOT_CONFIGURED", ts.CallToolError(t, "generate_image", map[string]any{"prompt": "a fox"}).Code)
}

func TestServer_GenerateImage(t *testing.T) {
	ts := testserver.New(t)

	var res struct {
		ProjectID string `json:"project_id"`
		ImagePath string `json:"image_path"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "generate_image", map[string]any{"prompt": "a fox", "style": "comic"}), &res))
	require.FileExists(t, res.ImagePath)
	require.NotEmpty(t, res.ProjectID)
}

func TestServer_ToolchainUnavailable(t *testing.T) {
	ts := testserver.New(t, testserver.WithCompiler(filepath.Join(t.TempDir(), "no-latex")))

	var proj projectPayload
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "create_project", map[string]any{"name": "P", "type": "comic"}), &proj))

	require.Equal(t, "TOOLCHAIN_UNAVAILABLE", ts.CallToolError(t, "render_document", map[string]any{"project_id": proj.Project.ID}).Code)
	ts.CallTool(t, "render_latex", map[string]any{"project_id": proj.Project.ID})

	var status struct {
		LaTeXAvailable bool            `json:"latex_available"`
		Providers      map[string]bool `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "system_status", nil), &status))
	require.False(t, status.LaTeXAvailable)
	require.Equal(t, map[string]bool{"gemini": false, "elevenlabs": false}, status.Providers)
}

func TestServer_EstimateAndLimits(t *testing.T) {
	ts := testserver.New(t)

	var est struct {
		Seconds   int            `json:"seconds"`
		Minutes   float64        `json:"minutes"`
		Breakdown map[string]int `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "estimate_generation_time", nil), &est))
	require.Equal(t, 470, est.Seconds)
	require.Equal(t, 7.8, est.Minutes)

	est.Breakdown = nil // json.Unmarshal merges into an existing map
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "estimate_generation_time", map[string]any{
		"scenes": 4, "include_audio": false,
	}), &est))
	require.Equal(t, 140, est.Seconds)
	require.NotContains(t, est.Breakdown, "audio_generation")

	var limits map[string]struct {
		CanMakeRequest bool `json:"can_make_request"`
		MaxRequests    int  `json:"max_requests"`
	}
	require.NoError(t, json.Unmarshal(ts.CallTool(t, "rate_limit_status", nil), &limits))
	require.Equal(t, 20, limits["image_generation"].MaxRequests)
	require.Equal(t, 50, limits["text_generation"].MaxRequests)
	require.Equal(t, 10, limits["audio_generation"].MaxRequests)
	require.True(t, limits["audio_generation"].CanMakeRequest)
}

func TestServer_DocResources(t *testing.T) {
	ts := testserver.New(t)
	ctx := context.Background()

	resources, err := ts.Session.ListResources(ctx, nil)
	require.NoError(t, err)
	uris := make(map[string]bool)
	for _, r := range resources.Resources {
		uris[r.URI] = true
		require.Positive(t, r.Size)
	}
	require.True(t, uris["storyforge://docs/index"])
	require.True(t, uris["storyforge://styles"])

	read, err := ts.Session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "storyforge://styles"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	require.Contains(t, read.Contents[0].Text, "watercolor")
}

func TestServer_TracksSessionFromMeta(t *testing.T) {
	ts := testserver.New(t)
	ctx := context.Background()

	_, err := ts.Session.CallTool(ctx, &sdkmcp.CallToolParams{
		Meta:      sdkmcp.Meta{"session_id": "stdio-1"},
		Name:      "list_projects",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)

	sess, err := ts.Sessions.Get(ctx, "stdio-1")
	require.NoError(t, err)
	require.Equal(t, "stdio", sess.Data["transport"])
}

func TestServer_HTTP(t *testing.T) {
	ts, httpServer := testserver.NewHTTP(t)

	resp, err := http.Get(httpServer.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	ts.CallTool(t, "create_project", map[string]any{"name": "P", "type": "story"})

	sessionID := ts.Session.ID()
	require.NotEmpty(t, sessionID)
	require.Eventually(t, func() bool {
		_, err := ts.Sessions.Get(context.Background(), sessionID)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}
