/*
Package ports defines the driven and driving ports (interfaces) of the intake engine.

These interfaces decouple the flow engine from external implementations, allowing
it to work with various validators, storage backends and transcript sinks.

# Key Interfaces

  - AnswerValidator: Judges one raw answer for the current question.
  - StateStore: Persists and loads session State.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - TranscriptSink: Receives the per-turn transcript and compiled snapshots.
  - SessionDriver: The boundary exposed to chat front-ends, CLIs and test harnesses.
*/
package ports
