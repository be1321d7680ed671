/*
Package domain contains the core domain models of the intake question-flow engine.

It defines the static question catalog entries, the mutable per-conversation State,
the Verdict returned by answer validators, the Envelope returned for every turn and
the compiled survey Document. This package is kept pure and free of external
dependencies like I/O or persistence.

# Key Entities

  - QuestionSpec: One catalog entry (prompt, scope, role, visibility rule).
  - State: Runtime snapshot of a conversation (cursor, answers, vehicles, attempts).
  - Verdict: A validator's judgment of one raw answer.
  - Envelope: The response handed back to the caller after each answer.
  - Document: The compiled, stable-shape output of a session.
*/
package domain
