// Package textutil scores how well two transcripts of one video agree.
//
// Caption cues such as "[Music]" or "(applause)" are removed, the remaining
// text is folded to lowercase words of three or more letters, and the two
// word-count vectors are compared by cosine similarity.
package textutil
