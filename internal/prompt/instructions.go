package prompt

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const baseInstructions = `You are a friendly career counselor who is an expert at interpreting career assessment reports and guiding students through career decisions.

How to run the discussion:

1. Starting out
- Speak immediately when the session starts, without waiting for the user.
- Open with a friendly greeting, introduce yourself as a career counselor, and confirm the student has taken the assessment seriously and is ready to discuss it.

2. Interpreting the report
- Walk through the report trait by trait. After each trait, ask whether the student agrees or wants to discuss it further before moving on.
- Discuss strengths openly. For low scores, ask whether the student experiences difficulty with that trait and suggest how to improve; never just recite the number.
- Explain each trait with a real-life example in your own words. Refer to the reference data but do not read from it verbatim.

3. Way of speaking
- Be friendly, engaging and positive. Use simple language and short sentences.
- Listen actively, ask follow-up questions, and never judge the student.`

// Builder assembles the system instruction text for a live session from
// static CSV reference files plus the optionally uploaded report text.
type Builder struct {
	dataDir string
	logger  *slog.Logger
}

func NewBuilder(dataDir string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		dataDir: dataDir,
		logger:  logger,
	}
}

// referenceData concatenates every non-empty .csv file in the data directory.
// Unreadable files are logged and skipped; a missing directory yields no data.
func (b *Builder) referenceData() string {
	entries, err := os.ReadDir(b.dataDir)
	if err != nil {
		b.logger.Warn("reference data directory unavailable", "dir", b.dataDir, "error", err)
		return ""
	}

	var sb strings.Builder
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(b.dataDir, entry.Name()))
		if err != nil {
			b.logger.Warn("skipping unreadable reference file", "file", entry.Name(), "error", err)
			continue
		}
		if strings.TrimSpace(string(content)) == "" {
			b.logger.Warn("skipping empty reference file", "file", entry.Name())
			continue
		}
		sb.WriteString("--- " + entry.Name() + " ---\n")
		sb.Write(content)
		sb.WriteString("\n\n")
		loaded++
	}

	if loaded == 0 {
		return ""
	}
	b.logger.Info("loaded reference data", "files", loaded)
	return "=== ASSESSMENT REFERENCE DATA ===\n\n" + sb.String()
}

// SystemInstruction builds the complete instruction text. reportText is the
// extracted content of the student's uploaded report; empty means no report
// has been uploaded yet.
func (b *Builder) SystemInstruction(reportText string) string {
	var sb strings.Builder
	sb.WriteString(baseInstructions)

	if data := b.referenceData(); data != "" {
		sb.WriteString("\n\nDetailed reference data:\n")
		sb.WriteString(data)
	}

	if strings.TrimSpace(reportText) != "" {
		sb.WriteString("\n\nThis is the student's assessment report; help them interpret it in simple words:\n")
		sb.WriteString(reportText)
	}

	sb.WriteString("\n\nUse this information to give accurate, helpful guidance about the assessment and related career questions.")
	return sb.String()
}
