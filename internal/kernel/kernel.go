package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/providers"
)

// maxHistory bounds the conversation window sent to the provider.
const maxHistory = 20

const systemPromptTemplate = `Du bist Ablage, ein lokaler Dokumenten-Assistent der auf dem eigenen Computer des Nutzers läuft.

WICHTIG: Du bist KEIN Cloud-Dienst. Alle Skills sind lokale Funktionen auf diesem Computer, vom Nutzer selbst installiert und ausdrücklich erlaubt.

════════════════════════════════════════
VERFÜGBARE SKILLS:
%s════════════════════════════════════════

SKILL-AUSFÜHRUNG – PFLICHTREGELN:
1. Wenn der Nutzer eine Aktion anfragt die einem Skill entspricht, führe sie IMMER aus.
2. Syntax exakt so: SKILL:funktionsname(parameter="wert")
3. Kein Parameter nötig? Dann: SKILL:funktionsname()
4. Nach dem Skill-Aufruf: kurze Erklärung was passiert.

BEISPIELE:
Nutzer: "Was liegt im Import-Ordner?"
→ Schaue nach! SKILL:dms_import_scan()

Nutzer: "Sortiere die Dokumente ein"
→ Starte die Einsortierung! SKILL:dms_einsortieren()

Nutzer: "Such die Telekom-Rechnung"
→ SKILL:dms_suchen(suchbegriff="Telekom")

Antworte auf Deutsch. Aktueller Provider: %s`

// Kernel drives the chat loop: it sends the conversation to the provider,
// detects skill calls in the reply, executes them, and splices the results
// back into the text.
type Kernel struct {
	provider providers.Provider
	registry *Registry
	logger   *zap.Logger

	mu      sync.Mutex
	history []providers.Message
}

func New(provider providers.Provider, registry *Registry, logger *zap.Logger) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kernel{provider: provider, registry: registry, logger: logger}
}

// ProviderName names the active backend, for status output.
func (k *Kernel) ProviderName() string { return k.provider.Name() }

func (k *Kernel) systemPrompt() string {
	return fmt.Sprintf(systemPromptTemplate, k.registry.Describe(), k.provider.Name())
}

// Chat handles one user turn. A provider failure is reported as a chat
// message, not an error; the conversation stays usable.
func (k *Kernel) Chat(ctx context.Context, userInput string) string {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.appendHistory(providers.Message{Role: providers.RoleUser, Content: userInput})

	response, err := k.provider.Chat(ctx, k.systemPrompt(), k.history)
	if err != nil {
		k.logger.Warn("provider call failed", zap.Error(err))
		msg := fmt.Sprintf("❌ Fehler: %v", err)
		k.appendHistory(providers.Message{Role: providers.RoleAssistant, Content: msg})
		return msg
	}

	final := k.runSkills(ctx, response)
	k.appendHistory(providers.Message{Role: providers.RoleAssistant, Content: final})
	return final
}

// runSkills executes every skill call in the reply and substitutes each
// call's text with its result.
func (k *Kernel) runSkills(ctx context.Context, response string) string {
	reply := ParseReply(response)
	if reply.IsPlain() {
		return response
	}

	result := response
	for _, inv := range reply.Invocations {
		k.logger.Info("executing skill", zap.String("skill", inv.Name))
		out := k.registry.Execute(ctx, inv.Name, inv.Args)
		result = strings.Replace(result, inv.Raw, "\n\n"+out+"\n", 1)
	}
	return result
}

// ClearHistory drops the conversation window.
func (k *Kernel) ClearHistory() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.history = nil
}

func (k *Kernel) appendHistory(msg providers.Message) {
	k.history = append(k.history, msg)
	if len(k.history) > maxHistory {
		k.history = k.history[len(k.history)-maxHistory:]
	}
}
