/*
Package intake is a conversational question flow for collecting car insurance data, one answer at a time.

A Driver walks a person through an ordered catalog of questions. Every answer is judged by an AnswerValidator (an LLM, offline rules or an external registry), and the flow engine decides what to ask next: it retries rejected answers, skips a question after too many attempts, repeats the vehicle block once per vehicle, and asks for confirmation before stopping early. Once the survey ends, the collected answers are compiled into a structured Document.

# Concept

The engine is pure: it maps the current State and a Verdict to the next State. The Driver owns the I/O around it. It loads and saves session state through a StateStore, serializes turns per session with a DistributedLocker, and reports each step through LifecycleHooks. This keeps the flow embeddable in a terminal chat, an HTTP API or an MCP server without changes.

# Key Features

  - Conditional questions: visibility depends on earlier answers, globally or per vehicle.
  - Repeating vehicle block: each vehicle is validated and archived before the next one starts.
  - Attempt ceiling: a question that keeps failing is skipped instead of blocking the survey.
  - Interrupts: off-topic requests get a reply and the same question is asked again.
  - Durable sessions: memory, file and Redis stores with optional encryption. Personal answers can be masked in transcripts.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/intake"
		"github.com/aretw0/intake/pkg/validator/rules"
	)

	func main() {
		driver, err := intake.New(rules.New())
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		id, err := driver.CreateSession(ctx)
		if err != nil {
			log.Fatal(err)
		}

		prompt, _, _ := driver.CurrentPrompt(ctx, id)
		fmt.Println(prompt)

		env, err := driver.SubmitAnswer(ctx, id, "94105")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(env.Message)
	}
*/
package intake
