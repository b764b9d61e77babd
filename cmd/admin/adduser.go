package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
)

// addUser 邮箱已存在时更新姓名、角色与密码
func (cli *commandLine) addUser(ctx context.Context, email, name, role, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := cli.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := cli.users.Create(ctx, user); err != nil {
			return fmt.Errorf("创建用户失败: %w", err)
		}
		fmt.Fprintf(cli.writer(), "已创建 %s 账号 %s (%s)\n", role, email, user.UserID)
	case err != nil:
		return fmt.Errorf("查询用户失败: %w", err)
	default:
		user.Name = strings.TrimSpace(name)
		user.Role = role
		user.PasswordHash = string(hash)
		// 教师与管理员不属于任何小组
		user.GroupID = nil
		if err := cli.users.Update(ctx, user); err != nil {
			return fmt.Errorf("更新用户失败: %w", err)
		}
		fmt.Fprintf(cli.writer(), "已更新 %s 账号 %s\n", role, email)
	}
	return nil
}
