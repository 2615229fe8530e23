// Package hash 提供密码哈希与校验的辅助函数。
package hash

import "golang.org/x/crypto/bcrypt"

// bcryptCost 固定为 10，与历史数据中已有的哈希保持一致。
const bcryptCost = 10

// HashPassword 对明文密码做 bcrypt 哈希。
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash 校验明文密码与哈希是否匹配。
func CheckPasswordHash(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
