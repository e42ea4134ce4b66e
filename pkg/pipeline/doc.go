// Package pipeline assembles dataflow graphs: named processes exposing typed ports, joined by edges
// carrying stamped datums from one output port to one input port.
//
// A Pipeline goes through two phases. During assembly, processes are added with AddProcess and their
// ports joined with Connect, which checks port existence and type compatibility and rejects a second
// edge into an input port. SetupPipeline then validates the whole graph at once: unconnected required
// ports, flow dependent types that do not resolve to a single concrete type, and cycles. Every issue
// is reported in one *SetupError. Once set up, the topology is frozen and the pipeline only answers
// queries, such as ReceiversForPort, for whoever executes it.
//
// An Edge is a FIFO safe for one producer and one consumer. A bounded edge applies backpressure to its
// producer, or drops datums, according to its FullPolicy.
//
// The pipeline does not run processes.
package pipeline
