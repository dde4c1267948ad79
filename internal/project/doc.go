// Package project models the serializable editing session: the ordered
// effect list, overlay and crop configuration, frame markers, and the scalar
// parameters every effect reads. Projects persist as JSON documents and
// compile into immutable pipeline snapshots.
package project
