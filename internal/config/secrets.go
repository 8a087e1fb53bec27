package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Odds provider
	out.OddsAPI = cfg.OddsAPI
	redact(&out.OddsAPI.ApiKey)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Scan.Sports != nil {
		out.Scan.Sports = make([]string, len(cfg.Scan.Sports))
		copy(out.Scan.Sports, cfg.Scan.Sports)
	}
	if cfg.Scan.Markets != nil {
		out.Scan.Markets = make([]string, len(cfg.Scan.Markets))
		copy(out.Scan.Markets, cfg.Scan.Markets)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}

	// Copy maps so mutations to the redacted copy do not affect the original.
	if cfg.Books.Vig != nil {
		out.Books.Vig = make(map[string]float64, len(cfg.Books.Vig))
		for k, v := range cfg.Books.Vig {
			out.Books.Vig[k] = v
		}
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
