package rag

import (
	"context"
	"fmt"
	"strings"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/llm"
)

const (
	bookWideLimit     = 5
	selectedTextLimit = 3

	noBookWideResultsMessage     = "I couldn't find any relevant information in the book to answer your question."
	noSelectedTextResultsMessage = "I couldn't find specific information related to the selected text to answer your question."
	emptyCompletionMessage       = "I couldn't generate a response."
)

const assistantPreamble = "You are a helpful assistant for the Physical AI & Humanoid Robotics book.\n"

const answerRules = "If the context doesn't contain enough information to answer the question, say so.\n" +
	"Always be truthful and only provide information that is present in the context.\n" +
	"If you provide information from the book, include the relevant citations.\n"

// ragEngine implements the Engine interface.
type ragEngine struct {
	searcher  Searcher
	completer llm.CompletionProvider
	params    llm.CompletionParams
}

// NewEngine creates a new RAG engine.
func NewEngine(searcher Searcher, completer llm.CompletionProvider, params llm.CompletionParams) Engine {
	return &ragEngine{
		searcher:  searcher,
		completer: completer,
		params:    params,
	}
}

// QueryBookWide answers a question using the top matches from the whole book.
func (e *ragEngine) QueryBookWide(ctx context.Context, query string) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "book-wide query started", "query_length", len(query))

	results, err := e.searcher.SearchContent(ctx, query, bookWideLimit, nil)
	if err != nil {
		return Answer{}, err
	}
	if len(results) == 0 {
		logger.InfoContext(ctx, "no search results found", "mode", ModeBookWide)
		return emptyAnswer(ModeBookWide, noBookWideResultsMessage), nil
	}

	prompt := assistantPreamble +
		"Answer the user's question based on the following context from the book.\n" +
		answerRules +
		"\nContext: " + joinContext(results) +
		"\n\nQuestion: " + query +
		"\n\nAnswer:"

	return e.answer(ctx, ModeBookWide, query, prompt, results)
}

// QuerySelectedText answers a question about a passage, searching with the
// question and passage combined and falling back to the passage alone.
func (e *ragEngine) QuerySelectedText(ctx context.Context, query, selectedText string) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "selected-text query started", "query_length", len(query), "selected_length", len(selectedText))

	combined := fmt.Sprintf("%s related to: %s", query, selectedText)
	results, err := e.searcher.SearchContent(ctx, combined, selectedTextLimit, nil)
	if err != nil {
		return Answer{}, err
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "combined search empty, searching selected text alone")
		results, err = e.searcher.SearchContent(ctx, selectedText, selectedTextLimit, nil)
		if err != nil {
			return Answer{}, err
		}
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no search results found", "mode", ModeSelectedText)
		return emptyAnswer(ModeSelectedText, noSelectedTextResultsMessage), nil
	}

	prompt := assistantPreamble +
		"The user has selected specific text and asked a question about it.\n" +
		"Answer the user's question based on the following context from the book, with special focus on the selected text.\n" +
		answerRules +
		"\nSelected text: " + selectedText +
		"\n\nQuestion: " + query +
		"\n\nContext: " + joinContext(results) +
		"\n\nAnswer:"

	return e.answer(ctx, ModeSelectedText, query, prompt, results)
}

func (e *ragEngine) answer(ctx context.Context, mode Mode, query, prompt string, results []Result) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	logger.DebugContext(ctx, "sending prompt to completion provider", "prompt_length", len(prompt), "sources", len(results))
	text, err := e.completer.Complete(ctx, prompt, e.params)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get completion", "error", err)
		return Answer{}, fmt.Errorf("failed to get completion: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		text = emptyCompletionMessage
	}

	answer := Answer{
		Text:       text,
		Citations:  citation.FromResults(searchHits(results), query),
		Confidence: Confidence(results),
		Mode:       mode,
		Sources:    results,
		Model:      e.completer.ModelName(),
	}

	logger.InfoContext(ctx, "query answered",
		"mode", mode,
		"sources", len(results),
		"citations", len(answer.Citations),
		"confidence", answer.Confidence,
		"answer_length", len(text),
	)
	return answer, nil
}

func emptyAnswer(mode Mode, message string) Answer {
	return Answer{
		Text:      message,
		Citations: []citation.Citation{},
		Mode:      mode,
		Sources:   []Result{},
	}
}

func joinContext(results []Result) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Content)
	}
	return strings.Join(texts, "\n\n")
}
