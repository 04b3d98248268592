// Package cli provides an interactive shell over the storage engine.
// It is a thin demonstration surface, not a core deliverable: the
// engine itself is a library, and this package only exists to drive
// it from a terminal.
package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jassi-singh/caskdb/internal/config"
	"github.com/jassi-singh/caskdb/internal/engine"
)

// Handler drives an Engine from interactive terminal commands.
type Handler struct {
	engine  *engine.Engine
	cfg     *config.Config
	scanner *bufio.Scanner
	batch   *engine.WriteBatch
}

// NewHandler creates a new CLI handler bound to e.
func NewHandler(e *engine.Engine, cfg *config.Config) *Handler {
	return &Handler{
		engine:  e,
		cfg:     cfg,
		scanner: bufio.NewScanner(os.Stdin),
	}
}

// Run starts the interactive command loop, processing user input until
// an exit command is received or an error occurs.
func (h *Handler) Run() error {
	fmt.Println("caskdb - embedded key-value store")
	fmt.Println("Commands: PUT <key> <value>, GET <key>, DELETE <key>, BATCH, COMMIT, EXIT")
	fmt.Print("> ")

	for h.scanner.Scan() {
		line := strings.TrimSpace(h.scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		parts := strings.Fields(line)
		command := strings.ToUpper(parts[0])

		switch command {
		case "PUT":
			h.handlePut(parts)
		case "GET":
			h.handleGet(parts)
		case "DELETE":
			h.handleDelete(parts)
		case "BATCH":
			h.handleBatchStart()
		case "COMMIT":
			h.handleBatchCommit()
		case "EXIT", "QUIT":
			slog.Info("cli: shutdown requested by user")
			fmt.Println("Goodbye!")
			return nil
		default:
			slog.Warn("cli: unknown command received", "command", command)
			fmt.Printf("Unknown command: %s\n", command)
		}

		fmt.Print("> ")
	}

	if err := h.scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// handlePut processes PUT commands to store key-value pairs. While a
// batch is open, the write is staged rather than applied immediately.
func (h *Handler) handlePut(parts []string) {
	if len(parts) < 3 {
		fmt.Println("Usage: PUT <key> <value>")
		return
	}

	key := []byte(parts[1])
	value := []byte(strings.Join(parts[2:], " "))

	var err error
	if h.batch != nil {
		err = h.batch.Put(key, value)
	} else {
		err = h.engine.Put(key, value)
	}
	if err != nil {
		slog.Error("cli: PUT failed", "key", parts[1], "error", err)
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

// handleGet processes GET commands to retrieve values by key.
func (h *Handler) handleGet(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: GET <key>")
		return
	}

	value, err := h.engine.Get([]byte(parts[1]))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s\n", value)
}

// handleDelete processes DELETE commands to remove keys.
func (h *Handler) handleDelete(parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: DELETE <key>")
		return
	}

	key := []byte(parts[1])
	var err error
	if h.batch != nil {
		err = h.batch.Delete(key)
	} else {
		err = h.engine.Delete(key)
	}
	if err != nil {
		slog.Error("cli: DELETE failed", "key", parts[1], "error", err)
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

// handleBatchStart opens a new WriteBatch; subsequent PUT/DELETE
// commands stage into it instead of writing directly.
func (h *Handler) handleBatchStart() {
	if h.batch != nil {
		fmt.Println("A batch is already open; COMMIT it first")
		return
	}
	h.batch = h.engine.NewWriteBatch(engine.DefaultWriteBatchOptions(h.cfg))
	fmt.Println("Batch started")
}

// handleBatchCommit commits the open batch, if any.
func (h *Handler) handleBatchCommit() {
	if h.batch == nil {
		fmt.Println("No batch is open")
		return
	}
	err := h.batch.Commit()
	h.batch = nil
	if err != nil {
		slog.Error("cli: batch commit failed", "error", err)
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}
