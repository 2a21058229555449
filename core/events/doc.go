// Package events defines the typed session event vocabulary.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - user_speech.*
//   - transcript.*
//   - assistant_audio.*
//   - tool_call.*
//   - tool_approval.*
//   - handoff.*
//   - history.*
//
// Semantics used across the package:
//
//   - Started/Stopped: lifecycle boundaries of an audio or speech stream.
//   - Completed: terminal immutable payload for the current stream phase.
//   - Requested/Resolved: the two halves of a human-gated decision.
//
// session events
//
//   - SessionStateChanged (session.state_changed): the session moved to a
//     new state; carries both the previous and the new state.
//   - SessionError (session.error): a fatal session error; the session has
//     already moved to its error state when this fires.
//   - SessionInterrupted (session.interrupted): playback was interrupted on
//     caller request.
//   - SessionAborted (session.aborted): the remote peer aborted the session.
//
// user_speech events
//
//   - UserSpeechStarted (user_speech.started): voice activity began.
//   - UserSpeechStopped (user_speech.stopped): voice activity ended.
//
// transcript events
//
//   - UserTranscriptCompleted (transcript.user_completed): terminal
//     transcript of one user utterance.
//   - AssistantTranscriptCompleted (transcript.assistant_completed):
//     terminal transcript of one assistant response.
//
// assistant_audio events
//
//   - AssistantAudioStarted (assistant_audio.started): response audio began.
//   - AssistantAudioStopped (assistant_audio.stopped): response audio ended.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution failed.
//
// tool_approval events
//
//   - ToolApprovalRequested (tool_approval.requested): a tool call needs a
//     human decision before it may run.
//   - ToolApprovalResolved (tool_approval.resolved): a pending approval
//     request was approved or rejected.
//
// handoff events
//
//   - HandoffAccepted (handoff.accepted): the active agent delegated to a
//     registered target.
//   - HandoffReturned (handoff.returned): the active agent returned control
//     to the original agent.
//
// history events
//
//   - HistoryUpdated (history.updated): the conversation history gained an
//     item.
package events
