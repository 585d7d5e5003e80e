/*
Package domain contains the journey schema model and the session types shared
by the engine, the adapters and the hosts.

It is kept free of I/O. Everything here is plain data plus small helpers.

# Key Entities

  - Journey: pages, groups and questions as edited by the journey designer.
  - Rule / Logic: conjunctive visibility conditions on earlier answers.
  - FollowUp / Repeat: questions revealed under a yes/no answer, optionally
    repeated as numbered instances.
  - Answers: the live answer map keyed by AnswerKey, plus per-parent
    repeat-instance lists.
  - Step: one flattened unit of interaction, rebuilt on every change.
  - State: the serializable snapshot of a preview session.
*/
package domain
