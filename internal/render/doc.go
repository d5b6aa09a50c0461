// Package render turns ordered page images into intermediate multipage
// documents.
//
// Planning happens once, up front: assets are deduplicated, naturally
// sorted, re-sequenced per the merge-order policy, and partitioned into
// indexed groups sized by speed mode, worker count, and total page count.
// Groups then render on a bounded worker pool; completion order carries no
// meaning because the group index assigned at partition time is the only
// ordering key. A success-rate gate decides whether enough groups survived
// to hand the artifacts to the merger.
package render
