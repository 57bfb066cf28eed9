package auth

import "context"

// Principal 已认证主体
type Principal struct {
	ID    string
	Name  string
	Roles []string
}

// HasRole 判断主体是否具有指定角色
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// principalKey context 键类型,避免与其他包的键冲突
type principalKey struct{}

// WithPrincipal 将主体写入 context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext 从 context 中取出主体
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
