/*
Package aacflow turns the gesture phrases recorded by an assistive
communication (AAC) device into one short, polite, verified sentence.

A run is a walk over a small directed graph of state-transform nodes: the
user's recent phrases are loaded and de-duplicated, their intent is
classified, and an emergency or everyday sentence is drafted. A separate
verifier then accepts or rejects each draft. Rejected drafts are regenerated
(emergency) or refined (everyday) until the verifier answers OK or the
attempt budget is spent, in which case the last candidate is returned
flagged as unverified. Every node invocation is recorded in the run's debug
trace.

# Usage

	store, _ := redis.New("localhost:6379", "", 0)
	gen, _ := llm.New(llm.Config{Kind: llm.KindOpenAI, Model: "gpt-4.1", APIKey: key})
	ver, _ := llm.New(llm.Config{Kind: llm.KindGemini, Model: "gemini-2.5-flash", APIKey: key})

	eng, err := aacflow.New(store, gen, ver, aacflow.WithMaxAttempts(3))
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Run(ctx, "user-42")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.FinalSentence, res.Verified)

Compose runs the same workflow on tokens the caller already holds, and Record
appends freshly recognised tokens to the user's phrase list.
*/
package aacflow
