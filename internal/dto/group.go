package dto

// ── 小组模块 DTO ──

// CreateGroupRequest 创建小组请求
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

// SetMembersRequest 设置小组成员（整体替换）
type SetMembersRequest struct {
	StudentIDs []string `json:"student_ids" binding:"dive,uuid"`
}
