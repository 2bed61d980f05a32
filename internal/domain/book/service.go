package book

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/storyforge/internal/assembler"
	"github.com/rpggio/storyforge/internal/compiler"
	"github.com/rpggio/storyforge/internal/domain/content"
	"github.com/rpggio/storyforge/internal/domain/project"
	"github.com/rpggio/storyforge/internal/domain/template"
	"github.com/rpggio/storyforge/internal/generation"
	"github.com/rpggio/storyforge/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "January 02, 2006"

// Config holds book generation defaults.
type Config struct {
	SceneCounts      map[string]int
	SceneConcurrency int
	DefaultStyle     string
	GenerateAudio    bool
}

// SceneCount returns the scene count for a project type.
func (c Config) SceneCount(projectType string) int {
	if n, ok := c.SceneCounts[projectType]; ok && n > 0 {
		return n
	}
	switch projectType {
	case "educational":
		return 15
	case "comic":
		return 20
	}
	return 10
}

// Deps are the collaborators of the book service.
type Deps struct {
	Projects  Projects
	Contents  Contents
	Templates Templates
	Stories   generation.StoryGenerator
	Images    generation.ImageGenerator
	Narration generation.NarrationGenerator
	Artifacts Artifacts
	Assembler *assembler.Assembler
	Compiler  Compiler
	Limiter   Limiter
	Providers []generation.Provider
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates generation, assembly and compilation of books.
type Service struct {
	Deps
	cfg Config
}

// NewService creates a book service.
func NewService(deps Deps, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Assembler == nil {
		deps.Assembler = assembler.New()
	}
	if cfg.SceneConcurrency < 1 {
		cfg.SceneConcurrency = 3
	}
	if cfg.DefaultStyle == "" {
		cfg.DefaultStyle = "watercolor"
	}
	return &Service{Deps: deps, cfg: cfg}
}

// CreateBook generates a story, stores it as a new project and fills in an
// illustration and optional narration for every scene. A story generation
// failure aborts before any project is created; later per-scene failures are
// reported in the result.
func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*CreateBookResult, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.CharacterName) == "" {
		return nil, fmt.Errorf("%w: title and character name are required", ErrInvalidInput)
	}
	if req.Type == "" {
		req.Type = "story"
	}
	if req.ArtStyle == "" {
		req.ArtStyle = s.cfg.DefaultStyle
	}
	withAudio := s.cfg.GenerateAudio
	if req.GenerateAudio != nil {
		withAudio = *req.GenerateAudio
	}

	story, err := s.Stories.GenerateStory(ctx, generation.StoryRequest{
		CharacterName:   req.CharacterName,
		CharacterFriend: req.CharacterFriend,
		Setting:         req.Setting,
		Moral:           req.Moral,
		SceneCount:      s.cfg.SceneCount(req.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("generating story: %w", err)
	}

	proj, err := s.Projects.Create(ctx, project.CreateRequest{
		Name:     req.Title,
		Type:     req.Type,
		Settings: bookSettings(req, withAudio),
	})
	if err != nil {
		return nil, err
	}

	var voice *generation.VoiceSettings
	if req.VoiceID != "" {
		voice = &generation.VoiceSettings{VoiceID: req.VoiceID}
	}

	results := make([]SceneResult, len(story.Scenes))
	var g errgroup.Group
	g.SetLimit(s.cfg.SceneConcurrency)
	for i, scene := range story.Scenes {
		g.Go(func() error {
			results[i] = s.buildScene(ctx, proj.ID, i, scene, sceneOptions{
				style:       req.ArtStyle,
				consistency: req.Consistency,
				audio:       withAudio,
				voice:       voice,
			})
			return nil
		})
	}
	_ = g.Wait()

	out := &CreateBookResult{Project: proj, Story: story, Scenes: results}
	s.Logger.Info("book created", "project_id", proj.ID, "scenes", len(results), "failed_scenes", out.Failures())
	return out, nil
}

func bookSettings(req CreateBookRequest, withAudio bool) project.Settings {
	settings := project.Settings{
		"art_style":        req.ArtStyle,
		"generate_audio":   withAudio,
		"character_name":   req.CharacterName,
		"character_friend": req.CharacterFriend,
		"setting":          req.Setting,
		"moral":            req.Moral,
	}
	if req.VoiceID != "" {
		settings["voice_id"] = req.VoiceID
	}
	return settings.Merge(req.Settings)
}

type sceneOptions struct {
	style       string
	consistency *generation.CharacterConsistency
	audio       bool
	voice       *generation.VoiceSettings
}

// buildScene persists scene i: text at 2i, the image at 2i+1 and the
// narration at 2i.
func (s *Service) buildScene(ctx context.Context, projectID string, i int, scene generation.Scene, opts sceneOptions) SceneResult {
	res := SceneResult{Index: i, Title: scene.Title}
	logger := s.Logger.With("project_id", projectID, "scene", i)

	item, err := s.Contents.Add(ctx, content.AddRequest{
		ProjectID:  projectID,
		Type:       content.TypeText,
		Text:       scene.Text,
		OrderIndex: 2 * i,
		Metadata:   content.Metadata{"scene_title": scene.Title},
	})
	if err != nil {
		logger.Error("scene text not stored", "error", err)
		res.TextError = err.Error()
	} else {
		res.TextContentID = item.ID
	}

	if path, err := s.sceneImage(ctx, projectID, i, scene, opts); err != nil {
		logger.Warn("scene image failed", "error", err)
		res.ImageError = err.Error()
	} else {
		res.ImagePath = path
	}

	if opts.audio {
		if path, err := s.sceneAudio(ctx, projectID, i, scene, opts.voice); err != nil {
			logger.Warn("scene narration failed", "error", err)
			res.AudioError = err.Error()
		} else {
			res.AudioPath = path
		}
	}
	return res
}

func (s *Service) sceneImage(ctx context.Context, projectID string, i int, scene generation.Scene, opts sceneOptions) (string, error) {
	data, err := s.Images.GenerateImage(ctx, generation.ImageRequest{
		Prompt:      scene.ImagePrompt,
		Style:       opts.style,
		Consistency: opts.consistency,
	})
	if err != nil {
		return "", err
	}
	path, err := s.Artifacts.WriteImage(fmt.Sprintf("%s_scene_%d.png", projectID, i), data)
	if err != nil {
		return "", err
	}
	if _, err := s.Contents.Add(ctx, content.AddRequest{
		ProjectID:  projectID,
		Type:       content.TypeImage,
		ImagePath:  path,
		OrderIndex: 2*i + 1,
		Metadata:   content.Metadata{"prompt": scene.ImagePrompt, "style": opts.style},
	}); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) sceneAudio(ctx context.Context, projectID string, i int, scene generation.Scene, voice *generation.VoiceSettings) (string, error) {
	data, err := s.Narration.GenerateNarration(ctx, scene.Text, voice)
	if err != nil {
		return "", err
	}
	path, err := s.Artifacts.WriteAudio(fmt.Sprintf("%s_scene_%d.mp3", projectID, i), data)
	if err != nil {
		return "", err
	}
	if _, err := s.Contents.Add(ctx, content.AddRequest{
		ProjectID:  projectID,
		Type:       content.TypeAudio,
		AudioPath:  path,
		Text:       scene.Text,
		OrderIndex: 2 * i,
	}); err != nil {
		return "", err
	}
	return path, nil
}

// GenerateImage creates a single illustration in a project of its own.
func (s *Service) GenerateImage(ctx context.Context, prompt, style string) (*ImageResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}
	if style == "" {
		style = s.cfg.DefaultStyle
	}

	data, err := s.Images.GenerateImage(ctx, generation.ImageRequest{Prompt: prompt, Style: style})
	if err != nil {
		return nil, fmt.Errorf("generating image: %w", err)
	}

	path, err := s.Artifacts.WriteImage("generated_"+uuid.NewString()+".png", data)
	if err != nil {
		return nil, fmt.Errorf("storing image: %w", err)
	}

	proj, err := s.Projects.Create(ctx, project.CreateRequest{
		Name:     "Generated Image: " + truncate(prompt, 30) + "...",
		Type:     "ecommerce",
		Settings: project.Settings{"prompt": prompt, "art_style": style},
	})
	if err != nil {
		return nil, err
	}
	item, err := s.Contents.Add(ctx, content.AddRequest{
		ProjectID: proj.ID,
		Type:      content.TypeImage,
		ImagePath: path,
		Metadata:  content.Metadata{"prompt": prompt, "style": style},
	})
	if err != nil {
		if derr := s.Projects.Delete(ctx, proj.ID); derr != nil {
			s.Logger.Warn("removing empty image project", "project_id", proj.ID, "error", derr)
		}
		return nil, err
	}
	return &ImageResult{ProjectID: proj.ID, ContentID: item.ID, ImagePath: path}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RenderLaTeX assembles a project's content and fills the selected template
// without compiling it.
func (s *Service) RenderLaTeX(ctx context.Context, projectID string, opts RenderOptions) (*Source, error) {
	proj, err := s.activeProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	items, err := s.Contents.List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var tpl *template.Template
	if opts.TemplateID != "" {
		tpl, err = s.Templates.Get(ctx, opts.TemplateID)
	} else {
		tpl, err = s.Templates.ForType(ctx, proj.Type)
	}
	if err != nil {
		return nil, err
	}

	settings := proj.Settings.Merge(opts.Settings)
	aopts := assembler.OptionsFromSettings(settings, proj.Type)
	body := s.Assembler.Content(proj.Name, items, aopts)

	vars := template.NewVars(
		assembler.Escape(proj.Name),
		assembler.Escape(aopts.Author),
		s.Now().Format(dateLayout),
		body,
	)
	latex, err := template.Fill(tpl.Body, vars)
	if err != nil {
		return nil, fmt.Errorf("filling template %s: %w", tpl.ID, err)
	}
	return &Source{ProjectID: proj.ID, TemplateID: tpl.ID, LaTeX: latex}, nil
}

// RenderDocument renders and compiles a project to project_{id}.pdf.
func (s *Service) RenderDocument(ctx context.Context, projectID string, opts RenderOptions) (*RenderResult, error) {
	src, err := s.RenderLaTeX(ctx, projectID, opts)
	if err != nil {
		return nil, err
	}
	path, err := s.Compiler.Compile(ctx, compiler.Request{
		Source:       src.LaTeX,
		Name:         "project_" + projectID,
		CompileTwice: opts.CompileTwice,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("document rendered", "project_id", projectID, "template_id", src.TemplateID, "path", path)
	return &RenderResult{ProjectID: projectID, TemplateID: src.TemplateID, Path: path}, nil
}

// CreateAudiobookCompanion compiles a track listing of a project's audio to
// {name}_audiobook.pdf. An empty name uses project_{id}.
func (s *Service) CreateAudiobookCompanion(ctx context.Context, projectID, name string) (string, error) {
	proj, err := s.activeProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	items, err := s.Contents.List(ctx, projectID)
	if err != nil {
		return "", err
	}

	latex, err := assembler.AudiobookCompanion(proj.Name, items)
	if err != nil {
		return "", err
	}

	if name == "" {
		name = "project_" + projectID
	}
	path, err := s.Compiler.Compile(ctx, compiler.Request{Source: latex, Name: name + "_audiobook"})
	if err != nil {
		return "", err
	}
	s.Logger.Info("audiobook companion rendered", "project_id", projectID, "path", path)
	return path, nil
}

func (s *Service) activeProject(ctx context.Context, id string) (*project.Project, error) {
	proj, err := s.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if proj.Status == project.StatusDeleted {
		return nil, project.ErrProjectNotFound
	}
	return proj, nil
}

// Per-step durations used by EstimateGenerationTime.
const (
	storySeconds = 20
	imageSeconds = 30
	audioSeconds = 15
)

// EstimateGenerationTime predicts how long CreateBook takes for a number of
// scenes.
func (s *Service) EstimateGenerationTime(scenes int, withAudio, withImages bool) Estimate {
	if scenes < 0 {
		scenes = 0
	}
	breakdown := map[string]int{"story_generation": storySeconds}
	total := storySeconds
	if withImages {
		breakdown["image_generation"] = scenes * imageSeconds
		total += scenes * imageSeconds
	}
	if withAudio {
		breakdown["audio_generation"] = scenes * audioSeconds
		total += scenes * audioSeconds
	}
	return Estimate{
		Seconds:   total,
		Minutes:   math.Round(float64(total)/60*10) / 10,
		Breakdown: breakdown,
	}
}

// RateLimitStatus reports every rate limit window.
func (s *Service) RateLimitStatus(ctx context.Context) (map[string]ratelimit.Status, error) {
	return s.Limiter.Status(ctx)
}

// Statistics reports store totals.
func (s *Service) Statistics(ctx context.Context) (*project.Statistics, error) {
	return s.Projects.Statistics(ctx)
}

// SystemStatus reports whether the compiler and providers are usable.
func (s *Service) SystemStatus(ctx context.Context) SystemStatus {
	return SystemStatus{
		LaTeXAvailable: s.Compiler.Available(ctx),
		Providers:      generation.ConfiguredProviders(s.Providers...),
	}
}
