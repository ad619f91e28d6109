/*
Package domain contains the core domain models of the aacflow workflow engine.

It defines the state threaded through a run, the nodes and transitions of the
workflow graph, and the verdict and intent enumerations. This package is kept
pure and free of I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - WorkflowState: the copy-on-write record passed from node to node.
  - Node: a named Step with a read/write Contract and outgoing Transitions.
  - Graph: the compiled set of nodes with an entry point.
  - TraceEntry: one record of a node invocation in the run's debug trace.
  - LifecycleHooks: observability callbacks fired by the engine and providers.
*/
package domain
