package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- VEHICLE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS vehicle SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS dealership_id ON vehicle TYPE string;
    DEFINE FIELD IF NOT EXISTS make ON vehicle TYPE string;
    DEFINE FIELD IF NOT EXISTS model ON vehicle TYPE string;
    DEFINE FIELD IF NOT EXISTS year ON vehicle TYPE int;
    DEFINE FIELD IF NOT EXISTS price ON vehicle TYPE float;
    DEFINE FIELD IF NOT EXISTS mileage ON vehicle TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS body_style ON vehicle TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS fuel_type ON vehicle TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS drivetrain ON vehicle TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS color ON vehicle TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS certified ON vehicle TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS description ON vehicle TYPE option<string>;

    DEFINE INDEX IF NOT EXISTS vehicle_dealership ON vehicle FIELDS dealership_id;
    DEFINE INDEX IF NOT EXISTS vehicle_make_model ON vehicle FIELDS make, model;

    -- ==========================================================================
    -- DEALERSHIP TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS dealership SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON dealership TYPE string;
    DEFINE FIELD IF NOT EXISTS address ON dealership TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS phone ON dealership TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS hours ON dealership TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS website ON dealership TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS handover_recipients ON dealership TYPE array<string> DEFAULT [];

    -- ==========================================================================
    -- PERSONA TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS persona SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS dealership_id ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON persona TYPE string;
    DEFINE FIELD IF NOT EXISTS tone ON persona TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS greeting ON persona TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS instructions ON persona TYPE option<string>;

    DEFINE INDEX IF NOT EXISTS persona_dealership ON persona FIELDS dealership_id;

    -- ==========================================================================
    -- LEAD TABLE (handover tracking)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS lead SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS dealership_id ON lead TYPE string;
    DEFINE FIELD IF NOT EXISTS customer_name ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS contact_info ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS status ON lead TYPE string DEFAULT 'open';
    DEFINE FIELD IF NOT EXISTS last_message ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS updated_at ON lead TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS lead_status ON lead FIELDS status;
    DEFINE INDEX IF NOT EXISTS lead_dealership ON lead FIELDS dealership_id;

    -- ==========================================================================
    -- ANALYTICS TABLE (append-only routing records)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS analytics SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS dealership_id ON analytics TYPE string;
    DEFINE FIELD IF NOT EXISTS conversation_id ON analytics TYPE string;
    DEFINE FIELD IF NOT EXISTS message_id ON analytics TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS selected_handler ON analytics TYPE string;
    DEFINE FIELD IF NOT EXISTS confidence ON analytics TYPE float;
    DEFINE FIELD IF NOT EXISTS response_time_ms ON analytics TYPE int;
    DEFINE FIELD IF NOT EXISTS escalated ON analytics TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS escalation_reason ON analytics TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON analytics TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS analytics_dealership ON analytics FIELDS dealership_id;
`
