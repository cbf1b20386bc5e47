package redact

// DefaultRules covers credentials that show up in pasted chat and email text.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "aws-access-key-id",
			Description: "AWS Access Key ID",
			Pattern:     `\b(?:A3T[A-Z0-9]|AKIA|ASIA|AGPA|AIDA|AROA)[A-Z0-9]{16}\b`,
			Severity:    "high",
		},
		{
			ID:          "api-key-assignment",
			Description: "API key assignment",
			Pattern:     `(?i)\b(?:api[_-]?key|apikey|x-api-key)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,}['"]?`,
			Severity:    "high",
		},
		{
			ID:          "password-assignment",
			Description: "Password or secret assignment",
			Pattern:     `(?i)\b(?:password|passwd|pwd|secret)\s*[:=]\s*['"]?[^\s'"]{6,}['"]?`,
			Severity:    "high",
		},
		{
			ID:          "bearer-token",
			Description: "Bearer token",
			Pattern:     `(?i)\bbearer\s+[A-Za-z0-9_\-.=]{20,}`,
			Severity:    "medium",
		},
		{
			ID:          "anthropic-api-key",
			Description: "Anthropic API key",
			Pattern:     `\bsk-ant-[A-Za-z0-9_\-]{20,}`,
			Severity:    "high",
		},
		{
			ID:          "openai-api-key",
			Description: "OpenAI-style secret key",
			Pattern:     `\bsk-(?:proj-)?[A-Za-z0-9]{32,}`,
			Severity:    "high",
		},
		{
			ID:          "github-token",
			Description: "GitHub token",
			Pattern:     `\b(?:gh[pousr]_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9_]{22,})`,
			Severity:    "high",
		},
		{
			ID:          "slack-token",
			Description: "Slack token",
			Pattern:     `\bxox[baprs]-[A-Za-z0-9\-]{10,}`,
			Severity:    "high",
		},
		{
			ID:          "jwt",
			Description: "JSON Web Token",
			Pattern:     `\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`,
			Severity:    "medium",
		},
		{
			ID:          "private-key",
			Description: "PEM private key block",
			Pattern:     `(?s)-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----.*?-----END (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----`,
			Severity:    "high",
		},
		{
			ID:          "connection-url",
			Description: "Connection URL with embedded credentials",
			Pattern:     `(?i)\b(?:postgres|postgresql|mysql|mongodb|redis|amqp|sftp|ftp)://[^\s:/@]+:[^\s@]+@[^\s]+`,
			Severity:    "high",
		},
	}
}
