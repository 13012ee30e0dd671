package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleUser               = "user"
	RoleParent             = "parent"
	RoleHealthcareProvider = "healthcare_provider"

	FeatureExpressionQuiz = "expression_quiz"
	FeatureAIScenario     = "ai_scenario"
	FeatureSocialDrill    = "social_drill"

	DialogueConversation = "conversation"
	DialogueTherapy      = "therapy"

	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)
