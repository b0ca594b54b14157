package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"cuesync/internal/config"
	"cuesync/internal/extract"
	"cuesync/internal/host"
	"cuesync/internal/logging"
	"cuesync/internal/page"
	"cuesync/internal/services"
	"cuesync/internal/session"
	"cuesync/internal/speech"
	"cuesync/internal/store"
	"cuesync/internal/subtitles"
	"cuesync/internal/translate"
)

// ErrStaleContext reports a result that arrived after the session moved on.
var ErrStaleContext = services.Wrap(services.ErrStale, "commands", "apply result",
	"session changed while the request was in flight; result discarded", nil)

// ProviderFactory builds a translation provider from effective configuration.
type ProviderFactory func(cfg *config.Config) (translate.Provider, error)

// Deps wires a Service. Store and Extractor are optional.
type Deps struct {
	Config    *config.Config
	Page      *host.Page
	Manager   *session.Manager
	Store     store.Store
	Extractor *extract.Extractor
	Providers ProviderFactory
	Logger    *slog.Logger
}

// Service implements the command surface.
type Service struct {
	cfg       *config.Config
	page      *host.Page
	manager   *session.Manager
	store     store.Store
	extractor *extract.Extractor
	providers ProviderFactory
	logger    *slog.Logger
}

// Status is the combined view returned by the status command.
type Status struct {
	URL            string           `json:"url"`
	Course         page.Context     `json:"course"`
	PlayerAttached bool             `json:"player_attached"`
	Provider       string           `json:"provider"`
	TargetLanguage string           `json:"target_language"`
	StoreBackend   string           `json:"store_backend"`
	Session        session.Snapshot `json:"session"`
}

// NewService constructs a Service.
func NewService(deps Deps) *Service {
	providers := deps.Providers
	if providers == nil {
		logger := deps.Logger
		providers = func(cfg *config.Config) (translate.Provider, error) {
			return translate.New(cfg, translate.WithLogger(logger))
		}
	}
	extractor := deps.Extractor
	if extractor == nil {
		extractor = extract.New(nil, 0, deps.Logger)
	}
	cfg := deps.Config
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return &Service{
		cfg:       cfg,
		page:      deps.Page,
		manager:   deps.Manager,
		store:     deps.Store,
		extractor: extractor,
		providers: providers,
		logger:    logging.NewComponentLogger(deps.Logger, "commands"),
	}
}

// Manager returns the session manager.
func (s *Service) Manager() *session.Manager { return s.manager }

// Page returns the host page.
func (s *Service) Page() *host.Page { return s.page }

// LoadText binds text to the current player. Empty text loads the pending
// session text (for example text restored after navigation).
func (s *Service) LoadText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		text = s.manager.Text()
	}
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrValidation, "commands", "load", "no subtitle text to load", nil)
	}
	return s.manager.Load(ctx, text)
}

// SaveText replaces the pending text and persists it for the current video.
func (s *Service) SaveText(ctx context.Context, text string) error {
	s.manager.SetText(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.saveFor(ctx, s.manager.VideoID(), text)
}

// ExtractFromPlayer reads subtitles from the current player and saves them.
func (s *Service) ExtractFromPlayer(ctx context.Context) (string, error) {
	player, ok := s.page.CurrentPlayer()
	if !ok {
		return "", session.ErrNoPlayer
	}
	videoID := s.manager.VideoID()
	token := s.manager.Token()
	text, err := s.extractor.FromPlayer(ctx, player)
	if err != nil {
		return "", err
	}
	if !s.manager.IsCurrent(token) {
		s.logStale(ctx, "extract", videoID)
		return "", ErrStaleContext
	}
	s.manager.SetText(text)
	if err := s.saveFor(ctx, videoID, text); err != nil {
		return text, err
	}
	return text, nil
}

// Translate sends text (or the pending session text) to the configured
// provider and reconciles the result against the original timings. The
// result is applied and saved only if the session is unchanged.
func (s *Service) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		text = s.manager.Text()
	}
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "commands", "translate", "no subtitle text to translate", nil)
	}

	cfg, err := s.EffectiveConfig(ctx)
	if err != nil {
		return "", err
	}
	provider, err := s.providers(cfg)
	if err != nil {
		return "", err
	}

	token := s.manager.Token()
	videoID := s.manager.VideoID()
	ctx = services.WithVideoID(ctx, videoID)
	course := s.CourseContext()

	s.logger.InfoContext(ctx, "translation started",
		logging.String("provider", provider.Name()),
		logging.String("target_language", cfg.Translation.TargetLanguage),
		logging.String("course", course.Title),
	)
	translated, err := provider.Translate(ctx, translate.Request{
		Text:       text,
		TargetLang: cfg.Translation.TargetLanguage,
		Context:    course,
	})
	if err != nil {
		logging.WarnWithContext(ctx, s.logger, "translation failed", "provider_error",
			logging.String("provider", provider.Name()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the provider credential and model"),
			logging.String(logging.FieldImpact, "subtitles stay untranslated"),
		)
		return "", err
	}

	reconciled := s.Reconcile(ctx, text, translated)

	if !s.manager.IsCurrent(token) {
		s.logStale(ctx, "translate", videoID)
		return "", ErrStaleContext
	}
	s.manager.SetText(reconciled)
	if err := s.saveFor(ctx, videoID, reconciled); err != nil {
		return reconciled, err
	}
	s.logger.InfoContext(ctx, "translation applied",
		logging.String("provider", provider.Name()),
		logging.Int("bytes", len(reconciled)),
	)
	return reconciled, nil
}

// Reconcile copies original timings onto translated text when cue counts
// match; otherwise it returns translated unchanged and logs the mismatch.
func (s *Service) Reconcile(ctx context.Context, original, translated string) string {
	out, result := subtitles.Reconcile(original, translated)
	if !result.Matched {
		logging.WarnWithContext(ctx, s.logger, "cue count mismatch; keeping translated timings", "cue_count_mismatch",
			logging.Int("original_cues", result.OriginalCues),
			logging.Int("translated_cues", result.TranslatedCues),
			logging.String(logging.FieldImpact, "speech may drift from the video"),
			logging.String(logging.FieldErrorHint, "retranslate or fix the timing lines by hand"),
		)
	}
	return out
}

// CopyPrompt renders the translation prompt for manual use.
func (s *Service) CopyPrompt(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		text = s.manager.Text()
	}
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "commands", "prompt", "no subtitle text", nil)
	}
	cfg, err := s.EffectiveConfig(ctx)
	if err != nil {
		return "", err
	}
	return translate.BuildPrompt(text, cfg.Translation.TargetLanguage, s.CourseContext()), nil
}

// Navigate moves the session to url and restores any text saved for it.
func (s *Service) Navigate(ctx context.Context, url string) error {
	var (
		saved string
		found bool
		err   error
	)
	if videoID, ok := page.VideoID(url); ok && s.store != nil {
		saved, found, err = s.store.GetSubtitle(ctx, videoID)
		if err != nil {
			logging.WarnWithContext(ctx, s.logger, "saved subtitle lookup failed", "store_error",
				logging.String(logging.FieldVideoID, videoID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "saved subtitles not restored"),
			)
			found = false
		}
	}
	s.manager.Navigate(ctx, url, saved, found)
	return err
}

// SetSpeech updates the speech toggle, voice, and rate and persists them.
func (s *Service) SetSpeech(ctx context.Context, enabled bool, voice string, rate float64) error {
	if rate != 0 && (rate < config.MinSpeechRate || rate > config.MaxSpeechRate) {
		return services.Wrap(services.ErrValidation, "commands", "speech",
			fmt.Sprintf("rate must be between %.1f and %.1f", config.MinSpeechRate, config.MaxSpeechRate), nil)
	}
	if err := s.manager.SetSpeechEnabled(enabled); err != nil {
		return err
	}
	speaker := s.manager.Speaker()
	if speaker != nil {
		if voice == "" {
			voice = speaker.Voice()
		}
		if rate == 0 {
			rate = speaker.Rate()
		}
		speaker.Configure(voice, rate)
	}
	return s.updateSettings(ctx, func(settings *store.Settings) {
		settings.SpeechEnabled = enabled
		settings.Voice = voice
		settings.SpeechRate = speech.ClampRate(rate)
	})
}

// SettingsUpdate carries translation settings changes. Empty fields keep
// their saved value.
type SettingsUpdate struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"api_key"`
	TargetLanguage string `json:"target_language"`
}

// UpdateSettings validates and persists translation settings.
func (s *Service) UpdateSettings(ctx context.Context, update SettingsUpdate) error {
	provider := strings.ToLower(strings.TrimSpace(update.Provider))
	switch provider {
	case "", config.ProviderOpenAI, config.ProviderGemini:
	default:
		return services.Wrap(services.ErrValidation, "commands", "settings", fmt.Sprintf("unknown provider %q", update.Provider), nil)
	}
	target := strings.TrimSpace(update.TargetLanguage)
	if target != "" {
		if _, err := language.Parse(target); err != nil {
			return services.Wrap(services.ErrValidation, "commands", "settings", fmt.Sprintf("target language %q is not a language tag", target), err)
		}
	}
	return s.updateSettings(ctx, func(settings *store.Settings) {
		if provider != "" {
			settings.Provider = provider
		}
		if key := strings.TrimSpace(update.APIKey); key != "" {
			settings.APIKey = key
		}
		if target != "" {
			settings.TargetLanguage = target
		}
	})
}

// EffectiveConfig returns configuration with persisted settings applied.
func (s *Service) EffectiveConfig(ctx context.Context) (*config.Config, error) {
	cfg := *s.cfg
	if s.store == nil {
		return &cfg, nil
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.Provider != "" {
		cfg.Translation.Provider = settings.Provider
	}
	if settings.TargetLanguage != "" {
		cfg.Translation.TargetLanguage = settings.TargetLanguage
	}
	if settings.APIKey != "" {
		switch cfg.Translation.Provider {
		case config.ProviderGemini:
			cfg.Translation.Gemini.APIKey = settings.APIKey
		default:
			cfg.Translation.OpenAI.APIKey = settings.APIKey
		}
	}
	if settings.Voice != "" {
		cfg.Speech.Voice = settings.Voice
	}
	if settings.SpeechRate != 0 {
		cfg.Speech.Rate = settings.SpeechRate
	}
	return &cfg, nil
}

// RestoreSpeech applies persisted speech settings to the session. It is
// called once at startup.
func (s *Service) RestoreSpeech(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if speaker := s.manager.Speaker(); speaker != nil {
		voice, rate := speaker.Voice(), speaker.Rate()
		if settings.Voice != "" {
			voice = settings.Voice
		}
		if settings.SpeechRate != 0 {
			rate = settings.SpeechRate
		}
		speaker.Configure(voice, rate)
	}
	if settings.SpeechEnabled {
		if err := s.manager.SetSpeechEnabled(true); err != nil && !errors.Is(err, services.ErrConfiguration) {
			return err
		}
	}
	return nil
}

// CourseContext derives the translation context from the page.
func (s *Service) CourseContext() page.Context {
	title, breadcrumbs := s.page.Details()
	return page.CourseContext(s.page.URL(), title, breadcrumbs)
}

// Status reports the page, provider, and session state.
func (s *Service) Status(ctx context.Context) Status {
	_, attached := s.page.CurrentPlayer()
	status := Status{
		URL:            s.page.URL(),
		Course:         s.CourseContext(),
		PlayerAttached: attached,
		Provider:       s.cfg.Translation.Provider,
		TargetLanguage: s.cfg.Translation.TargetLanguage,
		StoreBackend:   s.cfg.Store.Backend,
		Session:        s.manager.Snapshot(),
	}
	if s.store == nil {
		status.StoreBackend = ""
	}
	if cfg, err := s.EffectiveConfig(ctx); err == nil {
		status.Provider = cfg.Translation.Provider
		status.TargetLanguage = cfg.Translation.TargetLanguage
	}
	return status
}

func (s *Service) updateSettings(ctx context.Context, apply func(*store.Settings)) error {
	if s.store == nil {
		return nil
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	apply(&settings)
	if err := s.store.PutSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Service) saveFor(ctx context.Context, videoID, text string) error {
	if s.store == nil || videoID == "" {
		return nil
	}
	if err := s.store.PutSubtitle(ctx, videoID, text); err != nil {
		return fmt.Errorf("save subtitles for %s: %w", videoID, err)
	}
	s.logger.DebugContext(ctx, "subtitles saved", logging.String(logging.FieldVideoID, videoID))
	return nil
}

func (s *Service) logStale(ctx context.Context, operation, videoID string) {
	attrs := append(logging.DecisionAttrs("stale_result", "discarded", "session token changed"),
		logging.String("operation", operation),
		logging.String("issued_video_id", videoID),
		logging.String("current_video_id", s.manager.VideoID()),
	)
	s.logger.InfoContext(ctx, "discarding stale result", logging.Args(attrs...)...)
}
