// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the message payloads sent to the guide backend.
// Building is pure: the same mode and input always produce the same
// request.
package prompt

import (
	"fmt"

	"github.com/robera-dev/guide-tui/internal/gateway"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// Sampling parameters shared by every mode. Penalties discourage the
// model from looping on portfolio buzzwords.
const (
	Temperature      = 0.7
	MaxTokens        = 2000
	PresencePenalty  = 0.6
	FrequencyPenalty = 0.4
)

// MaxInputTokens is the soft ceiling for user input; Build still accepts
// larger inputs, callers use EstimateTokens to warn.
const MaxInputTokens = 4000

// =============================================================================
// MODES
// =============================================================================

// Mode selects the assistant persona.
type Mode string

const (
	ModeChat     Mode = "chat"     // conversational portfolio assistant
	ModeAnalyze  Mode = "analyze"  // portfolio analyst
	ModeGenerate Mode = "generate" // technical content generator
	ModeGitHub   Mode = "github"   // repository narrator
)

// Modes lists every valid mode in display order.
func Modes() []Mode {
	return []Mode{ModeChat, ModeAnalyze, ModeGenerate, ModeGitHub}
}

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeChat, ModeAnalyze, ModeGenerate, ModeGitHub:
		return true
	}
	return false
}

// =============================================================================
// PERSONAS
// =============================================================================

const chatPersona = `You are an AI portfolio assistant representing Robera, a Software Engineer and AI Specialist based in Ohio (Ohio State University graduate).

Technical skills: Python (Django, FastAPI, data processing), Next.js and React, JavaScript/TypeScript, C++, Node.js, AI/ML (neural networks, NLP, TensorFlow), data analysis, GraphQL, PostgreSQL, AWS.

Portfolio projects:
- AdventureSeek: travel planning platform with AI-personalized recommendations
- Arcaureus AutoNav: autonomous navigation system with real-time path planning
- Arcaureus Hub: privacy-focused smart home solution with edge computing
- AstroExture: AI-powered web development platform with design intelligence
- LMDX Healthcare: healthcare platform with AI diagnostics

Use a clear, professional yet conversational tone. Break complex technical concepts into understandable explanations with specific examples, metrics, and achievements. Always highlight unique innovations, problem-solving approaches, and real-world impact.`

const analyzePersona = `You are an expert portfolio analyst specializing in technical assessment of Robera's portfolio and skills.

Analyze along these axes: project impact and innovation level, technology stack diversity, depth of technical expertise, system architecture and scalability, security posture, and industry benchmarking against current market demands.

Deliver a comprehensive technical review with quantitative assessments, a skills gap analysis, and specific improvement recommendations. Reference concrete projects, compare with industry standards, and call out unique strengths.`

const generatePersona = `You are a specialized technical content generator producing high-quality documentation, code, and technical specifications for portfolio projects.

Classify the query first: code generation (produce well-structured, commented code with setup instructions), code fix (identify issues, provide corrected code with explanations), code explanation (break complex logic into simple concepts with use cases), or integration/setup (step-by-step guides with configuration examples).

Code must follow language conventions, use meaningful names, handle errors and edge cases, and include proper imports. Explanations start high-level and break down into components with practical examples.`

const githubPersona = `You are a technical writer summarizing a GitHub repository for a portfolio showcase. Write a concise narrative analysis of the repository from the metadata provided: what it does, what stack it uses, and what makes it interesting. Keep it to three or four sentences. Use markdown bold (**term**) for key technologies and concepts.`

// formatting is appended to every persona so responses render cleanly in
// the terminal.
const formatting = `

Response formatting rules:
- Bold key terms with **term** or {bold=term}
- Mark concepts with inline icon tokens: {icon=Rocket} for launches, {icon=Lightbulb} for innovations, {icon=Wrench} for technical details, {icon=BarChart} for metrics, {icon=Lock} for security, {icon=Target} for achievements
- Use fenced code blocks with a language tag for any code
- Use pipe tables for comparisons
- Reference projects as [Project Name](url) {icon=Link}
- Use ### headings and bullet lists to structure longer answers`

// personas maps each mode to its system block.
var personas = map[Mode]string{
	ModeChat:     chatPersona,
	ModeAnalyze:  analyzePersona,
	ModeGenerate: generatePersona,
	ModeGitHub:   githubPersona,
}

// =============================================================================
// BUILDING
// =============================================================================

// Build assembles the backend request for a mode and user input. Unknown
// modes fall back to chat.
func Build(mode Mode, userInput string) gateway.Request {
	persona, ok := personas[mode]
	if !ok {
		persona = chatPersona
	}

	return gateway.Request{
		Messages: []gateway.Message{
			gateway.NewSystemMessage(persona + formatting),
			gateway.NewUserMessage(userInput),
		},
		Temperature:      Temperature,
		MaxTokens:        MaxTokens,
		PresencePenalty:  PresencePenalty,
		FrequencyPenalty: FrequencyPenalty,
	}
}

// BuildWithHistory assembles a request that carries prior conversation
// turns between the persona and the new user input, so the backend sees
// the full exchange. prior must already alternate user/assistant roles.
func BuildWithHistory(mode Mode, prior []gateway.Message, userInput string) gateway.Request {
	persona, ok := personas[mode]
	if !ok {
		persona = chatPersona
	}

	messages := make([]gateway.Message, 0, len(prior)+2)
	messages = append(messages, gateway.NewSystemMessage(persona+formatting))
	messages = append(messages, prior...)
	messages = append(messages, gateway.NewUserMessage(userInput))

	return gateway.Request{
		Messages:         messages,
		Temperature:      Temperature,
		MaxTokens:        MaxTokens,
		PresencePenalty:  PresencePenalty,
		FrequencyPenalty: FrequencyPenalty,
	}
}

// BuildNarrative assembles the request used by the GitHub report to get
// its AI analysis paragraph. repoContext is the flattened metadata block
// (name, description, languages, topics).
func BuildNarrative(repoContext string) gateway.Request {
	input := fmt.Sprintf("Analyze this repository:\n\n%s", repoContext)
	return gateway.Request{
		Messages: []gateway.Message{
			gateway.NewSystemMessage(githubPersona),
			gateway.NewUserMessage(input),
		},
		Temperature:      Temperature,
		MaxTokens:        MaxTokens,
		PresencePenalty:  PresencePenalty,
		FrequencyPenalty: FrequencyPenalty,
	}
}
