package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// ハッシュ生成と照合が成功することを検証
func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher failed: %v", err)
	}

	hash, err := hasher.Hash("correctpass1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correctpass1" {
		t.Error("hash must not equal the plaintext password")
	}

	if !hasher.Compare(hash, "correctpass1") {
		t.Error("Compare should succeed for the correct password")
	}
	if hasher.Compare(hash, "wrongpass123") {
		t.Error("Compare should fail for a wrong password")
	}
}

// 同じパスワードでも毎回異なるハッシュ（ソルト付き）が生成されることを検証
func TestBcryptHasher_HashIsSalted(t *testing.T) {
	hasher, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher failed: %v", err)
	}

	h1, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	h2, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

// 範囲外のcostがデフォルトにフォールバックすることを検証
func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	hasher, err := NewBcryptHasher(1000)
	if err != nil {
		t.Fatalf("NewBcryptHasher failed: %v", err)
	}

	hash, err := hasher.Hash("somepassword")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	// bcryptハッシュのプレフィックスにcostが埋め込まれる
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("hash should use default cost, got prefix of %q", hash[:7])
	}
}

// CompareDummyがpanicせず完了することを検証（結果は常に不一致）
func TestBcryptHasher_CompareDummy(t *testing.T) {
	hasher, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher failed: %v", err)
	}

	hasher.CompareDummy("anypassword1")
}
