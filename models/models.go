package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - Contract, ContractFile, Analysis from contract.go
// - ChatSession, ChatMessage, ProcessingStep from session.go
// - AnalysisReport, ScoreReport, FeatureAnalysis from report.go
// - User, RefreshToken from user.go

// Database schema overview:
// 1. contracts - Audited procurement agreements with a forward-only status
// 2. contract_files - Immutable uploaded artifacts (contract/requirements/code)
// 3. analyses - Append-only function-point analysis results per contract
// 4. chat_sessions - Fiscalization chat sessions with optional final score
// 5. chat_messages - Ordered, append-only session transcripts
// 6. users - Auditor accounts for dashboard authentication
