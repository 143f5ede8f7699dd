package export

import (
	"fmt"
	"strings"
)

// MissingEntity 一条未能解析的实体引用
type MissingEntity struct {
	Kind string
	ID   string
}

func (m MissingEntity) String() string {
	return fmt.Sprintf("%s/%s", m.Kind, m.ID)
}

// EntitiesNotFoundError 聚合装配期间所有缺失的实体引用，
// 任何引用缺失时装配整体失败，不产生部分结果
type EntitiesNotFoundError struct {
	Missing []MissingEntity
}

func (e *EntitiesNotFoundError) Error() string {
	refs := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		refs = append(refs, m.String())
	}
	return fmt.Sprintf("referenced entities not found: %s", strings.Join(refs, ", "))
}
