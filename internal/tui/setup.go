package tui

import (
	"errors"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/store"
	"github.com/theirongolddev/harmony/internal/tui/theme"
)

// SetupValues holds the answers of the first-run wizard.
type SetupValues struct {
	BusinessName string
	Theme        string
	Backend      string
	RedisURL     string
	RemoteURL    string
}

// SetupValuesFrom prefills the wizard from cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		BusinessName: cfg.Invoice.BusinessName,
		Theme:        cfg.Appearance.Theme,
		Backend:      cfg.Storage.Backend,
		RedisURL:     cfg.Storage.RedisURL,
		RemoteURL:    cfg.Remote.URL,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.Invoice.BusinessName = strings.TrimSpace(v.BusinessName)
	cfg.Appearance.Theme = v.Theme
	cfg.Storage.Backend = v.Backend
	cfg.Storage.RedisURL = strings.TrimSpace(v.RedisURL)
	cfg.Remote.URL = strings.TrimSpace(v.RemoteURL)
}

// NewSetupForm builds the first-run wizard. The answers are written to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themes[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Bienvenido a Harmony Glass").
				Description("Configuremos algunas cosas. Puedes repetir esto con `harmony setup`."),
			huh.NewInput().
				Title("Nombre del negocio").
				Description("Aparece en las facturas. Déjalo vacío para usar HARMONY GLASS.").
				Value(&v.BusinessName),
			huh.NewSelect[string]().
				Title("Tema de colores").
				Options(themes...).
				Value(&v.Theme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Almacenamiento local").
				Options(
					huh.NewOption("SQLite (archivo local)", store.BackendSQLite),
					huh.NewOption("Redis", store.BackendRedis),
					huh.NewOption("Memoria (sin persistencia)", store.BackendMemory),
				).
				Value(&v.Backend),
			huh.NewInput().
				Title("URL de Redis").
				Placeholder("redis://localhost:6379/0").
				Validate(func(s string) error {
					if v.Backend == store.BackendRedis && strings.TrimSpace(s) == "" {
						return errors.New("requerida para Redis")
					}
					return nil
				}).
				Value(&v.RedisURL),
			huh.NewInput().
				Title("URL remota (opcional)").
				Description("Endpoint que refleja los datos. Vacío = modo local.").
				Validate(validRemoteURL).
				Value(&v.RemoteURL),
		),
	).WithShowHelp(true)
}

func validRemoteURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("debe ser una URL http(s)")
	}
	return nil
}
