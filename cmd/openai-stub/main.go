package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role string `json:"role"`
		// Content is a string, or a list of parts for vision requests.
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9_.+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+`)

// ocrTranscript is what every scanned page "contains".
const ocrTranscript = "Stub Candidate\nstub.candidate@example.com\n+1 555 000 1234\n\nSkills\nGo, SQL"

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal(err)
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var content string
		first := req.Messages[0]
		var sys string
		switch {
		case json.Unmarshal(first.Content, &sys) != nil:
			// Parts array: a vision OCR request
			content = ocrTranscript
		case strings.Contains(sys, "resume parsing assistant"):
			user := ""
			if len(req.Messages) >= 2 {
				_ = json.Unmarshal(req.Messages[1].Content, &user)
			}
			content = structure(user)
		default:
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

// structure answers the structuring prompt with fenced JSON built from the
// first line and first email of the embedded resume text.
func structure(user string) string {
	text := user
	if _, after, ok := strings.Cut(user, "Resume text:"); ok {
		text = after
	}
	text, _, _ = strings.Cut(text, "Return only valid JSON")
	name := ""
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" && !emailRe.MatchString(s) {
			name = s
			break
		}
	}
	b, _ := json.Marshal(map[string]any{
		"Full Name":       name,
		"Email":           emailRe.FindString(text),
		"Phone Number":    "",
		"Address":         "",
		"Education":       []string{},
		"Work Experience": []string{},
		"Skills":          []string{},
	})
	return "```json\n" + string(b) + "\n```"
}
