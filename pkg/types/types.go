package types

// Severity は通知の重大度です。
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification は、セッションからユーザーへ伝えるメッセージを保持します。
// CLIではログに、Web UIではレスポンスJSONに載せて表示されます。
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// PageResult は、1つのURLから取得・整形された結果を保持します。
type PageResult struct {
	URL         string // 取得したURL
	Title       string // <title> の内容
	Description string // meta description の内容
	SiteName    string // og:site_name の内容
	HTML        string // 表示用HTML (base タグ注入済み、または埋め込み不可時のセキュリティ通知)
	Content     string // LLMに渡すクリーンなテキスト
	Embeddable  bool   // フレーム内に表示してよいか
	Canceled    bool   // 後続のリクエストまたは明示的なキャンセルにより中断されたか
}

// Exchange は、1回の質問と回答の組です。トランスクリプト出力で利用されます。
type Exchange struct {
	Question string
	Answer   string
	Failed   bool
}
