// Package guide produces remediation guidance for failed transactions:
// a static table of canned steps per error category, plus an LLM-backed
// variant that explains an arbitrary failure message.
package guide

import (
	"github.com/jmoellers/insightdeck/internal/models"
)

var staticGuides = map[string][]models.ResolutionStep{
	"network": {
		{
			ID:          "1",
			Title:       "Netzwerkverbindung prüfen",
			Description: "Überprüfen Sie die Internetverbindung und DNS-Auflösung.",
			Code:        "curl -I https://api.payment-provider.com/health",
		},
		{
			ID:          "2",
			Title:       "Proxy-Einstellungen überprüfen",
			Description: "Stellen Sie sicher, dass Proxy-Einstellungen korrekt konfiguriert sind.",
			Code:        "export https_proxy=http://proxy.company.com:8080",
		},
		{
			ID:          "3",
			Title:       "Firewall-Regeln prüfen",
			Description: "Verifizieren Sie, dass ausgehende Verbindungen zur Payment-API erlaubt sind.",
		},
	},
	"authentication": {
		{
			ID:          "1",
			Title:       "API-Schlüssel validieren",
			Description: "Überprüfen Sie, ob der verwendete API-Schlüssel noch gültig ist.",
			Code:        `curl -H "Authorization: Bearer YOUR_API_KEY" https://api.payment-provider.com/auth/validate`,
		},
		{
			ID:          "2",
			Title:       "Token-Ablaufzeit prüfen",
			Description: "Stellen Sie sicher, dass das Access Token nicht abgelaufen ist.",
		},
		{
			ID:          "3",
			Title:       "Berechtigungen überprüfen",
			Description: "Verifizieren Sie, dass der API-Schlüssel die erforderlichen Berechtigungen hat.",
		},
	},
	"validation": {
		{
			ID:          "1",
			Title:       "Eingabedaten validieren",
			Description: "Überprüfen Sie alle erforderlichen Felder und Datenformate.",
			Code:        `{"amount": "99.99", "currency": "EUR", "payment_method": "card"}`,
		},
		{
			ID:          "2",
			Title:       "Schema-Validierung durchführen",
			Description: "Stellen Sie sicher, dass alle Daten dem erwarteten Schema entsprechen.",
		},
		{
			ID:          "3",
			Title:       "Sonderzeichen prüfen",
			Description: "Entfernen Sie ungültige Sonderzeichen aus Eingabefeldern.",
		},
	},
	"database": {
		{
			ID:          "1",
			Title:       "Datenbankverbindung testen",
			Description: "Überprüfen Sie die Verbindung zur Datenbank.",
			Code:        "SELECT 1; -- Test connection",
		},
		{
			ID:          "2",
			Title:       "Connection Pool prüfen",
			Description: "Stellen Sie sicher, dass der Connection Pool nicht erschöpft ist.",
		},
		{
			ID:          "3",
			Title:       "Transaktions-Locks überprüfen",
			Description: "Suchen Sie nach blockierenden Transaktionen oder Deadlocks.",
		},
	},
	"timeout": {
		{
			ID:          "1",
			Title:       "Timeout-Werte erhöhen",
			Description: "Passen Sie die Timeout-Konfiguration an.",
			Code:        "request_timeout = 30000  # 30 seconds",
		},
		{
			ID:          "2",
			Title:       "Retry-Mechanismus implementieren",
			Description: "Fügen Sie exponential backoff retry logic hinzu.",
		},
		{
			ID:          "3",
			Title:       "Performance optimieren",
			Description: "Analysieren Sie langsame Abfragen und optimieren Sie diese.",
		},
	},
}

var defaultGuide = []models.ResolutionStep{
	{
		ID:          "1",
		Title:       "Logs analysieren",
		Description: "Überprüfen Sie die detaillierten Logs für weitere Hinweise.",
		Code:        "tail -f /var/log/payment-service.log | grep ERROR",
	},
	{
		ID:          "2",
		Title:       "System-Status prüfen",
		Description: "Verifizieren Sie den Status aller abhängigen Services.",
	},
	{
		ID:          "3",
		Title:       "Support kontaktieren",
		Description: "Kontaktieren Sie den technischen Support mit der Transaktions-ID.",
	},
}

// StepsFor returns the canned resolution steps for an error category.
// Unrecognized categories get the generic guide. Never fails.
func StepsFor(category string) []models.ResolutionStep {
	if steps, ok := staticGuides[category]; ok {
		return steps
	}
	return defaultGuide
}
