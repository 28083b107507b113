package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// Optional dump of full reasoning-service traffic. Disabled unless a writer
// is installed via SetLLMWriter; decision rows in the ledger keep the
// authoritative copy either way.

var (
	llmMu  sync.Mutex
	llmLog *log.Logger
)

func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

func dumpLLM(kind, provider string, sections map[string]string, order []string) {
	llmMu.Lock()
	sink := llmLog
	llmMu.Unlock()
	if sink == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM][" + kind + "][" + provider + "]\n")
	for _, title := range order {
		body, ok := sections[title]
		if !ok {
			continue
		}
		b.WriteString("--- " + title + " ---\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	sink.Print(b.String())
}

func LogLLMRequest(provider, system, user string, imageCount int) {
	sections := map[string]string{"SYSTEM": system, "USER": user}
	if imageCount > 0 {
		sections["IMAGES"] = strings.Repeat("<image> ", imageCount)
	}
	dumpLLM("request", provider, sections, []string{"SYSTEM", "USER", "IMAGES"})
}

func LogLLMResponse(provider, raw string) {
	dumpLLM("response", provider, map[string]string{"RAW": raw}, []string{"RAW"})
}
