// Package model provides the data structures shared by the pipeline package and its collaborators.
// It defines the units transported by edges (datums and stamps) and the descriptions of the ports
// exposed by processes.
package model
