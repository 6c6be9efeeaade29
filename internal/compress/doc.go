// Package compress reduces raw sessions to compact textual digests.
//
// A digest keeps user messages verbatim (user intent is the ground truth
// downstream mining reasons about) and abbreviates assistant activity to
// one pipe-joined line of tool labels per step. Compression is
// deterministic: identical input and budget always produce an identical
// digest. The budgeter selects which sessions to compress, newest first,
// under a total byte budget.
package compress
