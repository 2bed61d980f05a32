package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/storyforge/internal/domain/book"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/template"
)

const defaultEstimateScenes = 10

// addTool registers a typed tool whose domain errors are returned as coded
// tool errors instead of protocol errors.
func addTool[In any](server *sdkmcp.Server, logger *slog.Logger, name, description string, fn func(context.Context, In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			out, err := fn(ctx, in)
			if err != nil {
				res := errorResult(err)
				logger.Info("tool failed", "tool", name, "session_id", getSessionID(ctx), "code", MapError(err).Code, "error", err)
				return res, nil, nil
			}
			return nil, out, nil
		})
}

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	registerProjectTools(server, svc.Projects, logger)
	registerContentTools(server, svc.Contents, logger)
	registerTemplateTools(server, svc.Templates, logger)
	registerBookTools(server, svc.Books, logger)
}

func registerProjectTools(server *sdkmcp.Server, projects ProjectService, logger *slog.Logger) {
	addTool(server, logger, "create_project", "Create a new book project",
		func(ctx context.Context, in CreateProjectParams) (any, error) {
			proj, err := projects.Create(ctx, project.CreateRequest{
				Name:     in.Name,
				Type:     in.Type,
				Settings: in.Settings,
			})
			if err != nil {
				return nil, err
			}
			return ProjectResponse{Project: proj}, nil
		})

	addTool(server, logger, "list_projects", "List active projects, most recently updated first",
		func(ctx context.Context, in ListProjectsParams) (any, error) {
			list, err := projects.List(ctx, in.Type)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []project.Project{}
			}
			return ListProjectsResponse{Projects: list}, nil
		})

	addTool(server, logger, "get_project", "Get a project by ID, including deleted projects",
		func(ctx context.Context, in ProjectIDParams) (any, error) {
			proj, err := projects.Get(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return ProjectResponse{Project: proj}, nil
		})

	addTool(server, logger, "update_project", "Update a project's name, type, status or settings",
		func(ctx context.Context, in UpdateProjectParams) (any, error) {
			req := project.UpdateRequest{Name: in.Name, Type: in.Type}
			if in.Status != nil {
				status := project.Status(*in.Status)
				req.Status = &status
			}
			if in.Settings != nil {
				settings := project.Settings(*in.Settings)
				req.Settings = &settings
			}
			proj, err := projects.Update(ctx, in.ID, req)
			if err != nil {
				return nil, err
			}
			return ProjectResponse{Project: proj}, nil
		})

	addTool(server, logger, "delete_project", "Mark a project deleted; its content and files are kept",
		func(ctx context.Context, in ProjectIDParams) (any, error) {
			if err := projects.Delete(ctx, in.ID); err != nil {
				return nil, err
			}
			return DeletedResponse{ID: in.ID, Deleted: true}, nil
		})
}

func registerContentTools(server *sdkmcp.Server, contents ContentService, logger *slog.Logger) {
	addTool(server, logger, "add_content", "Add a text, image or audio item to a project",
		func(ctx context.Context, in AddContentParams) (any, error) {
			item, err := contents.Add(ctx, content.AddRequest{
				ProjectID:  in.ProjectID,
				Type:       content.Type(in.Type),
				Text:       in.Text,
				ImagePath:  in.ImagePath,
				AudioPath:  in.AudioPath,
				OrderIndex: in.OrderIndex,
				Metadata:   in.Metadata,
			})
			if err != nil {
				return nil, err
			}
			return ContentResponse{Content: item}, nil
		})

	addTool(server, logger, "list_content", "List a project's content in render order",
		func(ctx context.Context, in ListContentParams) (any, error) {
			items, err := contents.List(ctx, in.ProjectID)
			if err != nil {
				return nil, err
			}
			if items == nil {
				items = []content.Item{}
			}
			return ListContentResponse{Items: items}, nil
		})

	addTool(server, logger, "update_content", "Update fields of a content item",
		func(ctx context.Context, in UpdateContentParams) (any, error) {
			req := content.UpdateRequest{
				Text:       in.Text,
				ImagePath:  in.ImagePath,
				AudioPath:  in.AudioPath,
				OrderIndex: in.OrderIndex,
			}
			if in.Metadata != nil {
				metadata := content.Metadata(*in.Metadata)
				req.Metadata = &metadata
			}
			item, err := contents.Update(ctx, in.ID, req)
			if err != nil {
				return nil, err
			}
			return ContentResponse{Content: item}, nil
		})

	addTool(server, logger, "delete_content", "Delete a content item; the referenced file is kept",
		func(ctx context.Context, in ContentIDParams) (any, error) {
			if err := contents.Delete(ctx, in.ID); err != nil {
				return nil, err
			}
			return DeletedResponse{ID: in.ID, Deleted: true}, nil
		})
}

func registerTemplateTools(server *sdkmcp.Server, templates TemplateService, logger *slog.Logger) {
	addTool(server, logger, "list_templates", "List document templates without their bodies",
		func(ctx context.Context, in ListTemplatesParams) (any, error) {
			list, err := templates.List(ctx, in.Type)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []template.Template{}
			}
			return ListTemplatesResponse{Templates: list}, nil
		})

	addTool(server, logger, "get_template", "Get a template including its LaTeX body",
		func(ctx context.Context, in TemplateIDParams) (any, error) {
			tpl, err := templates.Get(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return TemplateResponse{Template: tpl}, nil
		})
}

func registerBookTools(server *sdkmcp.Server, books BookService, logger *slog.Logger) {
	addTool(server, logger, "create_book", "Generate a story with illustrations and optional narration into a new project",
		func(ctx context.Context, in CreateBookParams) (any, error) {
			return books.CreateBook(ctx, book.CreateBookRequest{
				Title:           in.Title,
				Type:            in.Type,
				CharacterName:   in.CharacterName,
				CharacterFriend: in.CharacterFriend,
				Setting:         in.Setting,
				Moral:           in.Moral,
				ArtStyle:        in.ArtStyle,
				GenerateAudio:   in.GenerateAudio,
				VoiceID:         in.VoiceID,
				Consistency:     in.Consistency,
				Settings:        in.Settings,
			})
		})

	addTool(server, logger, "generate_image", "Generate a single illustration into a new project",
		func(ctx context.Context, in GenerateImageParams) (any, error) {
			return books.GenerateImage(ctx, in.Prompt, in.Style)
		})

	addTool(server, logger, "render_document", "Assemble, fill and compile a project to project_{id}.pdf",
		func(ctx context.Context, in RenderParams) (any, error) {
			return books.RenderDocument(ctx, in.ProjectID, renderOptions(in))
		})

	addTool(server, logger, "render_latex", "Assemble and fill a project's LaTeX source without compiling it",
		func(ctx context.Context, in RenderParams) (any, error) {
			return books.RenderLaTeX(ctx, in.ProjectID, renderOptions(in))
		})

	addTool(server, logger, "create_audiobook_companion", "Compile a track listing of a project's narration to {name}_audiobook.pdf",
		func(ctx context.Context, in AudiobookParams) (any, error) {
			path, err := books.CreateAudiobookCompanion(ctx, in.ProjectID, in.Name)
			if err != nil {
				return nil, err
			}
			return DocumentResponse{ProjectID: in.ProjectID, Path: path}, nil
		})

	addTool(server, logger, "estimate_generation_time", "Estimate how long create_book takes",
		func(_ context.Context, in EstimateParams) (any, error) {
			scenes := defaultEstimateScenes
			if in.Scenes != nil {
				scenes = *in.Scenes
			}
			return books.EstimateGenerationTime(scenes, boolOr(in.IncludeAudio, true), boolOr(in.IncludeImages, true)), nil
		})

	addTool(server, logger, "rate_limit_status", "Report usage of the image, text and audio rate limit windows",
		func(ctx context.Context, _ NoParams) (any, error) {
			return books.RateLimitStatus(ctx)
		})

	addTool(server, logger, "get_statistics", "Report project and content totals",
		func(ctx context.Context, _ NoParams) (any, error) {
			return books.Statistics(ctx)
		})

	addTool(server, logger, "system_status", "Report whether LaTeX and the generation providers are usable",
		func(ctx context.Context, _ NoParams) (any, error) {
			return books.SystemStatus(ctx), nil
		})
}

func renderOptions(in RenderParams) book.RenderOptions {
	return book.RenderOptions{
		TemplateID:   in.TemplateID,
		Settings:     in.Settings,
		CompileTwice: in.CompileTwice,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
