package session

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/example/homeflix/internal/catalog"
	"github.com/example/homeflix/internal/member"
	"github.com/example/homeflix/internal/rtstore"
)

// DecodeItems maps an items snapshot to catalog records, stamping each
// with its store key. Malformed documents are skipped, not fatal: one
// bad record must not blank the whole catalog.
func DecodeItems(snap rtstore.Snapshot, log *zap.Logger) []catalog.Item {
	items := make([]catalog.Item, 0, len(snap))
	for _, doc := range snap {
		var it catalog.Item
		if err := json.Unmarshal(doc.Data, &it); err != nil {
			log.Warn("skipping malformed item", zap.String("key", doc.Key), zap.Error(err))
			continue
		}
		it.Key = doc.Key
		items = append(items, it)
	}
	return items
}

// DecodeMembers maps a users snapshot to member records.
func DecodeMembers(snap rtstore.Snapshot, log *zap.Logger) []member.Member {
	members := make([]member.Member, 0, len(snap))
	for _, doc := range snap {
		var m member.Member
		if err := json.Unmarshal(doc.Data, &m); err != nil {
			log.Warn("skipping malformed member", zap.String("key", doc.Key), zap.Error(err))
			continue
		}
		m.Key = doc.Key
		members = append(members, m)
	}
	return members
}
