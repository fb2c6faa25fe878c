package syntax

// Rule node kinds. Names follow the BSL grammar rules.
const (
	KindFile       = "file"
	KindCodeBlock  = "codeBlock"
	KindError      = "error"
	KindStatement  = "statement"
	KindLabelName  = "labelName"
	KindMethodName = "methodName"
	KindTypeName   = "typeName"

	// Simple statements.
	KindAssignment             = "assignment"
	KindCallStatement          = "callStatement"
	KindWaitStatement          = "waitStatement"
	KindExecuteStatement       = "executeStatement"
	KindAddHandlerStatement    = "addHandlerStatement"
	KindRemoveHandlerStatement = "removeHandlerStatement"

	// Compound statements.
	KindIfStatement      = "ifStatement"
	KindIfBranch         = "ifBranch"
	KindElsifBranch      = "elsifBranch"
	KindElseBranch       = "elseBranch"
	KindWhileStatement   = "whileStatement"
	KindForStatement     = "forStatement"
	KindForEachStatement = "forEachStatement"
	KindTryStatement     = "tryStatement"
	KindTryCodeBlock     = "tryCodeBlock"
	KindExceptCodeBlock  = "exceptCodeBlock"

	// Jumps.
	KindReturnStatement   = "returnStatement"
	KindBreakStatement    = "breakStatement"
	KindContinueStatement = "continueStatement"
	KindRaiseStatement    = "raiseStatement"
	KindGotoStatement     = "gotoStatement"
	KindLabel             = "label"

	// Preprocessor.
	KindPreprocessor       = "preprocessor"
	KindPreprocIf          = "preprocIf"
	KindPreprocIfBranch    = "preprocIfBranch"
	KindPreprocElsifBranch = "preprocElsifBranch"
	KindPreprocElseBranch  = "preprocElseBranch"
	KindPreprocSymbol      = "preprocSymbol"

	// Expressions.
	KindExpression        = "expression"
	KindMember            = "member"
	KindOperation         = "operation"
	KindUnaryModifier     = "unaryModifier"
	KindConstValue        = "constValue"
	KindComplexIdentifier = "complexIdentifier"
	KindModifier          = "modifier"
	KindAccessProperty    = "accessProperty"
	KindAccessIndex       = "accessIndex"
	KindAccessCall        = "accessCall"
	KindMethodCall        = "methodCall"
	KindGlobalMethodCall  = "globalMethodCall"
	KindNewExpression     = "newExpression"
	KindTernaryOperator   = "ternaryOperator"
	KindWaitExpression    = "waitExpression"
	KindDoCall            = "doCall"
	KindCallParamList     = "callParamList"
	KindCallParam         = "callParam"
)

// Token kinds.
const (
	TokenIdentifier = "IDENTIFIER"
	TokenLParen     = "LPAREN"
	TokenRParen     = "RPAREN"

	TokenPlus     = "PLUS"
	TokenMinus    = "MINUS"
	TokenMul      = "MUL"
	TokenQuotient = "QUOTIENT"
	TokenModulo   = "MODULO"

	TokenAnd = "AND_KEYWORD"
	TokenOr  = "OR_KEYWORD"
	TokenNot = "NOT_KEYWORD"

	TokenAssign         = "ASSIGN"
	TokenNotEqual       = "NOT_EQUAL"
	TokenLess           = "LESS"
	TokenLessOrEqual    = "LESS_OR_EQUAL"
	TokenGreater        = "GREATER"
	TokenGreaterOrEqual = "GREATER_OR_EQUAL"

	TokenString    = "STRING"
	TokenNumber    = "NUMBER"
	TokenDateTime  = "DATETIME"
	TokenTrue      = "TRUE"
	TokenFalse     = "FALSE"
	TokenUndefined = "UNDEFINED"
	TokenNull      = "NULL"
)
