// Package library is the retrieval and authoring flow over the local store:
// resolving catalog issues to issue records, listing ranked soundtracks
// annotated with the viewer's vote, saving soundtracks, and applying votes.
package library
